// Command retroforge reorganizes optical-disc game dumps: canonical
// renaming, BIN/CUE and container conversion, multi-track merging, and
// multi-disc playlists.
package main
