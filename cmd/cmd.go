// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and NetEase authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:    "netease",
				Aliases: []string{"163", "ncm"},
				Usage:   "Save the NetEase MUSIC_U session cookie from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupNetease,
			},
		},
	}
}

// linkCommand manages playlist links.
func linkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Link Spotify and NetEase playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Link a Spotify playlist to a NetEase playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "User the link belongs to",
						Value: "default",
					},
					&cli.StringFlag{
						Name:     "spotify",
						Usage:    "Spotify playlist ID (or 'liked')",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "netease",
						Usage:    "NetEase playlist ID (or 'liked')",
						Required: true,
					},
				},
				Action: r.LinkCreate,
			},
			{
				Name:  "list",
				Usage: "List a user's playlist links",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "User whose links to list",
						Value: "default",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LinkList,
			},
			{
				Name:  "delete",
				Usage: "Remove a playlist link",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Link ID",
						Required: true,
					},
				},
				Action: r.LinkDelete,
			},
		},
	}
}

// pairsCommand manages confirmed track pairings.
func pairsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "pairs",
		Aliases: []string{"pairings"},
		Usage:   "Manage confirmed track pairings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every pairing",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON instead of CSV",
					},
				},
				Action: r.PairsList,
			},
			{
				Name:  "create",
				Usage: "Pair a Spotify track with a NetEase track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "spotify",
						Usage:    "Spotify track ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "netease",
						Usage:    "NetEase track ID",
						Required: true,
					},
				},
				Action: r.PairsCreate,
			},
			{
				Name:  "delete",
				Usage: "Remove the pairing referencing a track (both flags must name the same pairing)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "spotify",
						Usage: "Spotify track ID",
					},
					&cli.StringFlag{
						Name:  "netease",
						Usage: "NetEase track ID",
					},
				},
				Action: r.PairsDelete,
			},
		},
	}
}

// syncCommand handles reconciliation of linked playlists.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile linked playlists",
		Commands: []*cli.Command{
			{
				Name:  "diff",
				Usage: "Reconcile a link and report matched and unmatched tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "link",
						Usage: "Link ID",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Reconcile every link of --user",
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "User whose links --all reconciles",
						Value: "default",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Platform whose order anchors the report (spotify or netease)",
						Value: "spotify",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: text, csv, markdown or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "confirm",
						Usage: "Persist every heuristic match as a pairing",
					},
					&cli.BoolFlag{
						Name:  "color",
						Usage: "Colorize text reports",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent reconciliations with --all",
						Value: 4,
					},
				},
				Action: r.SyncDiff,
			},
			{
				Name:  "resolve",
				Usage: "Add a chosen track to the linked playlist on the other platform and pair it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "link",
						Usage:    "Link ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source-track",
						Usage:    "ID of the unmatched track",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source-platform",
						Usage:    "Platform of the unmatched track (spotify or netease)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "chosen-track",
						Usage:    "ID of the track chosen on the other platform",
						Required: true,
					},
				},
				Action: r.SyncResolve,
			},
			{
				Name:  "suggest",
				Usage: "Suggest candidates on the other platform for an unmatched track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "link",
						Usage:    "Link ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source-track",
						Usage:    "ID of the unmatched track",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source-platform",
						Usage:    "Platform of the unmatched track (spotify or netease)",
						Required: true,
					},
				},
				Action: r.SyncSuggest,
			},
		},
	}
}

// searchCommand searches one platform's catalog.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search a platform for tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Platform to search (spotify or netease)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Free-text query",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// playlistsCommand lists the current user's playlists on one platform.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your playlists on a platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Platform to list (spotify or netease)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Playlists,
	}
}

// cacheCommand manages the catalog response cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached catalog responses",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Drop cached responses for one platform, or all when none is given",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "platform",
						Aliases: []string{"p"},
						Usage:   "Platform to clear (spotify or netease)",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
