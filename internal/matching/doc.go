// Package matching decides which tracks on two platforms are the same recording.
//
// The package is pure: nothing here performs I/O, blocks or returns an error.
//
//   - [Normalize] canonicalizes names and artists before comparison.
//   - [Score] combines normalized edit-distance similarity of names and artists into a confidence in [0, 1].
//   - [Matcher.Reconcile] applies persisted pairings, then greedily accepts heuristic matches above a
//     threshold, then reports leftovers.
//   - [Summarize] tallies a reconciliation result.
//
// The greedy pass is first-come-first-served in source order, not a globally optimal assignment.
package matching
