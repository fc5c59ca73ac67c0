//go:build unix

package fileutil

import "golang.org/x/sys/unix"

// FreeSpace returns the bytes available to unprivileged writers on the
// filesystem containing dir.
func FreeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
