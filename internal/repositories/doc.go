// Package repositories implements SQLite persistence for track pairings and playlist links.
//
// Each repository runs its inserts in a transaction with atomic sequence generation for stable ordering.
// Deletes are hard deletes: removing a pairing frees both track ids for new pairings immediately.
//
// Key Implementations:
//   - [PairingRepository] : [models.PairingStore] with UNIQUE constraints on each track id
//   - [PlaylistPairingRepository] : [models.PlaylistPairingStore] scoped per user
//
// Unique constraint violations are mapped to [shared.ErrAlreadyPaired] and [shared.ErrAlreadyLinked],
// so concurrent writers racing for the same track get a conflict rather than a duplicate row.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
