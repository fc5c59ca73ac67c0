// Package renamer plans and executes canonical rename, move, and folder
// cleanup operations for title groups. Planning is read-only; only Apply
// mutates the filesystem, best effort, with conflicts skipped per operation.
package renamer
