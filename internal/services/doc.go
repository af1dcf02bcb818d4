// Package services implements [Catalog] for the music platforms spotease reconciles.
//
// # Catalogs
//
// A [Catalog] lists playlist tracks, searches, and appends tracks on one platform. Every
// implementation converts its wire format into [models.Track] so matching never sees
// platform-specific JSON. Multiple artists are joined with ", ".
//
// # Spotify
//
// [SpotifyService] talks to the Web API with a bearer token from [oauth2]. A stored access token
// is used directly; with a refresh token and client credentials the [oauth2.Config] token source
// refreshes it. Listings follow the "next" cursor. Tracks are added as spotify:track: uris in
// chunks of 100.
//
// # NetEase
//
// [NeteaseService] calls a NeteaseCloudMusicApi compatible server with the MUSIC_U cookie.
// NetEase reports failures inside the body: code 301 is an expired session and maps to
// [shared.ErrSessionExpired], and code 502 with a "重复" message on add means the song is
// already in the playlist and counts as success.
//
// # Liked songs
//
// The playlist id [LikedPlaylistID] addresses saved tracks on Spotify and liked songs on NetEase.
//
// # Rate limiting and caching
//
// Both clients wait on a [rate.Limiter] before each request. [CachedCatalog] wraps any catalog
// and serves listings from a [cache.Cache], invalidating a playlist after tracks are added to it.
//
// # Errors
//
//   - [shared.ErrSessionExpired]: token or cookie rejected
//   - [shared.ErrServiceUnavailable]: transport failure, 429 or 5xx
//   - [shared.ErrAPIRequest]: any other rejected request
//   - [shared.ErrMissingCredentials]: client constructed without credentials
package services
