// Package playlist plans and writes the ordered disc-list files for
// multi-disc titles. Existing playlists are backed up before being
// overwritten.
package playlist
