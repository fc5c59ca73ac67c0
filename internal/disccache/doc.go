// Package disccache persists parsed disc descriptors in SQLite.
//
// The cache is a read-through layer keyed by file path and invalidated by
// size or modification-time change. It is strictly an accelerator: every
// failure degrades to a fresh parse with a warning log, never an error, and
// the scanner re-checks on-disk state (missing track binaries) on every run
// regardless of cache hits.
package disccache
