// Package naming composes canonical filenames for discs, track binaries, and
// playlists.
//
// The canonical shape is "<Title> (<Region>) [<Serial>] (Disc <N>)" with each
// segment omitted entirely when its value is absent. Running the service on
// its own output is a fixed point: every normalization (article restoration,
// duplicate-region collapse, disc-suffix rewriting, language-tag stripping)
// is idempotent.
package naming
