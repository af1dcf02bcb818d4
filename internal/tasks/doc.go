// Package tasks reconciles linked Spotify and NetEase playlists with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines the operations the CLI drives:
//
//  1. [SyncEngine.Reconcile] : Pair the tracks of a playlist link
//     - Fetches the source playlist and the destination playlist
//     - Loads every confirmed pairing from the [models.PairingStore]
//     - Applies confirmed pairings first, then greedy fuzzy matching above the threshold
//     - Returns one [models.TrackPair] per track with a [matching.Summary]
//
//  2. [SyncEngine.ResolveManualMatch] : Fix an unmatched track by hand
//     - Adds the chosen track to the destination playlist
//     - Records the pairing; a conflict leaves the addition in place and is reported as partial success
//
//  3. [SyncEngine.ConfirmMatches] : Persist heuristic matches in bulk, collecting conflicts
//
//  4. [SyncEngine.Unlink], [SyncEngine.Search] and [SyncEngine.SuggestCandidates] : Pairing removal and catalog lookup
//
// [PlaylistEngine.ReconcileAll] reconciles several links with a bounded, rate limited worker pool.
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate] values. Updates use select with
// default so a slow or absent reader never blocks an operation.
//
// # Implementation
//
// [PlaylistEngine] implements [SyncEngine] with dependencies on:
//   - [services.Catalog] : Spotify and NetEase clients, usually wrapped in [services.CachedCatalog]
//   - [models.PairingStore] : Track pairings (repositories.PairingRepository)
//   - [models.PlaylistPairingStore] : Optional playlist links (repositories.PlaylistPairingRepository)
package tasks
