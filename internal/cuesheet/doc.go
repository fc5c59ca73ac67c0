// Package cuesheet parses and regenerates CD cue sheets.
//
// The reader walks FILE/TRACK/INDEX directives into an ordered track-file
// list while preserving every line verbatim. The writer emits a sheet that
// references a single merged binary: only the FILE declaration changes, all
// TRACK and INDEX lines are copied through byte-for-byte so sector-accurate
// index offsets stay valid after tracks are concatenated in original order.
package cuesheet
