//go:build !unix

package fileutil

// FreeSpace is unavailable on this platform; callers treat zero with a nil
// error as "unknown" and skip the preflight check.
func FreeSpace(dir string) (uint64, error) {
	return 0, nil
}
