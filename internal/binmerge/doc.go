// Package binmerge collapses multi-track cue/bin images into a single track
// binary with a rewritten sheet. Correctness rests on concatenating tracks
// byte for byte in original FILE order, which keeps every original INDEX
// offset valid against the merged stream.
package binmerge
