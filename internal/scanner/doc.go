// Package scanner enumerates a library root into disc descriptors.
//
// Cue sheets drive the walk: BIN files referenced by a sheet are folded into
// that sheet's descriptor as track files and never surface as independent
// discs, while referenced-but-missing binaries produce the hard warning that
// blocks conversion. Containers and orphan BINs become their own
// descriptors. Scanning is read-only and single-threaded; the optional
// descriptor cache only short-circuits filename and sheet parsing.
package scanner
