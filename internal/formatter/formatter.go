// package formatter renders reconciliation reports, search candidates and pairings as CSV, Markdown, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spotease/internal/matching"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
)

// Status labels for a [models.TrackPair].
const (
	StatusPersisted   = "persisted"
	StatusMatched     = "matched"
	StatusSpotifyOnly = "spotify only"
	StatusNeteaseOnly = "netease only"

	StatusPairedElsewhere = "paired elsewhere"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat parses a format name; "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Report is one reconciliation result prepared for rendering.
type Report struct {
	Title   string             `json:"title"`
	Source  models.Platform    `json:"source"`
	Pairs   []models.TrackPair `json:"pairs"`
	Summary matching.Summary   `json:"summary"`
}

// Options control text rendering.
type Options struct {
	Colorize bool // Style status labels with lipgloss
}

// Status returns the label for pair.
func Status(pair models.TrackPair) string {
	switch {
	case pair.Paired() && pair.Persisted:
		return StatusPersisted
	case pair.Paired() && pair.PairedElsewhere:
		return StatusPairedElsewhere
	case pair.Paired():
		return StatusMatched
	case pair.Spotify != nil:
		return StatusSpotifyOnly
	default:
		return StatusNeteaseOnly
	}
}

// Confidence renders the pair's confidence with two decimals, or "" when the pair is one-sided.
func Confidence(pair models.TrackPair) string {
	if !pair.Paired() {
		return ""
	}
	return strconv.FormatFloat(pair.Confidence, 'f', 2, 64)
}

// Describe renders a track as "Artist - Name", or "" for nil.
func Describe(t *models.Track) string {
	if t == nil {
		return ""
	}
	if t.Artist == "" {
		return t.Name
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Name)
}

func trackID(t *models.Track) string {
	if t == nil {
		return ""
	}
	return t.ID
}

// ExportToCSV converts a report to CSV with columns: Status, Spotify ID, Spotify, NetEase ID, NetEase, Confidence
func ExportToCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Status", "Spotify ID", "Spotify", "NetEase ID", "NetEase", "Confidence"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pair := range r.Pairs {
		record := []string{
			Status(pair),
			trackID(pair.Spotify),
			Describe(pair.Spotify),
			trackID(pair.Netease),
			Describe(pair.Netease),
			Confidence(pair),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToMarkdown converts a report to a Markdown document with a summary and one table row per pair
func ExportToMarkdown(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	if r.Source.Valid() {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", r.Source.Label()))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", r.Summary.Total))
	buf.WriteString(fmt.Sprintf("**Persisted**: %d, **Matched**: %d, **Spotify only**: %d, **NetEase only**: %d\n\n",
		r.Summary.Persisted, r.Summary.Matched, r.Summary.SpotifyOnly, r.Summary.NeteaseOnly))

	buf.WriteString("| Status | Spotify | NetEase | Confidence |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, pair := range r.Pairs {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			Status(pair), mdCell(Describe(pair.Spotify)), mdCell(Describe(pair.Netease)), Confidence(pair)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text, one line per pair
func ExportToText(r *Report, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	p := newPainter(opts.Colorize)

	buf.WriteString(p.title(fmt.Sprintf("Reconciliation: %s", r.Title)) + "\n")
	if r.Source.Valid() {
		buf.WriteString(fmt.Sprintf("Source: %s\n", r.Source.Label()))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d (persisted %d, matched %d, spotify only %d, netease only %d)\n\n",
		r.Summary.Total, r.Summary.Persisted, r.Summary.Matched, r.Summary.SpotifyOnly, r.Summary.NeteaseOnly))
	if r.Summary.Elsewhere > 0 {
		buf.WriteString(fmt.Sprintf("%d matched tracks are already paired elsewhere\n\n", r.Summary.Elsewhere))
	}

	for i, pair := range r.Pairs {
		status := p.status(fmt.Sprintf("%-12s", Status(pair)), Status(pair))
		switch {
		case pair.Paired():
			buf.WriteString(fmt.Sprintf("%3d. %s %s <-> %s (%s)\n", i+1, status, Describe(pair.Spotify), Describe(pair.Netease), Confidence(pair)))
		case pair.Spotify != nil:
			buf.WriteString(fmt.Sprintf("%3d. %s %s\n", i+1, status, Describe(pair.Spotify)))
		default:
			buf.WriteString(fmt.Sprintf("%3d. %s %s\n", i+1, status, Describe(pair.Netease)))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a report to indented JSON
func ExportToJSON(r *Report) ([]byte, error) {
	return shared.MarshalJSON(r, true)
}

// Export renders r in format.
func Export(r *Report, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return ExportToText(r, opts)
	case FormatCSV:
		return ExportToCSV(r)
	case FormatMarkdown:
		return ExportToMarkdown(r)
	case FormatJSON:
		return ExportToJSON(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders r in format and writes it to w.
func WriteReport(w io.Writer, r *Report, format Format, opts Options) error {
	data, err := Export(r, format, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReportFile renders r in format into path, defaulting to {title}_report.{ext}.
func WriteReportFile(r *Report, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_report.%s", r.Title, Extension(format))
	}

	data, err := Export(r, format, Options{})
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension used for format.
func Extension(f Format) string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// ExportCandidates renders search results as a numbered list: "1. Artist - Name (Album) [m:ss] id"
func ExportCandidates(tracks []models.Track) []byte {
	var buf bytes.Buffer
	if len(tracks) == 0 {
		buf.WriteString("No candidates found\n")
		return buf.Bytes()
	}

	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s] %s\n", i+1, Describe(&track), albumPart, shared.FormatDuration(track.DurationMs), track.ID))
	}
	return buf.Bytes()
}

// ExportPairings renders stored pairings as CSV with columns: ID, Spotify ID, NetEase ID, Created
func ExportPairings(pairings []*models.Pairing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Spotify ID", "NetEase ID", "Created"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, p := range pairings {
		record := []string{p.ID(), p.SpotifyTrackID(), p.NeteaseTrackID(), p.CreatedAt().UTC().Format("2006-01-02T15:04:05Z")}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// pairingJSON is the exported shape of a [models.Pairing], whose fields are unexported.
type pairingJSON struct {
	ID             string `json:"id"`
	Sequence       int    `json:"sequence"`
	SpotifyTrackID string `json:"spotify_track_id"`
	NeteaseTrackID string `json:"netease_track_id"`
	CreatedAt      string `json:"created_at"`
}

// PairingsToJSON renders stored pairings as indented JSON.
func PairingsToJSON(pairings []*models.Pairing) ([]byte, error) {
	out := make([]pairingJSON, len(pairings))
	for i, p := range pairings {
		out[i] = pairingJSON{
			ID:             p.ID(),
			Sequence:       p.Sequence(),
			SpotifyTrackID: p.SpotifyTrackID(),
			NeteaseTrackID: p.NeteaseTrackID(),
			CreatedAt:      p.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return shared.MarshalJSON(out, true)
}
