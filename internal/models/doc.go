// Package models defines domain entities and persistence interfaces for the spotease reconciliation service.
//
// The package contains two categories of types:
//
// 1. Catalog values: Lightweight structs representing data fetched from a streaming service
//   - [Track] : Song metadata tagged with its [Platform]
//   - [Playlist] : Basic playlist metadata
//   - [TrackPair] : One row of a reconciliation result
//
// 2. Persistent Entities: Database-backed models
//   - [Pairing] : A confirmed Spotify/NetEase track equivalence
//   - [PlaylistPairing] : A link between two playlists scoped to a user
//
// Persistent entities implement the [Model] interface.
// [PairingStore] and [PlaylistPairingStore] describe the persistence operations the sync engine depends on.
package models
