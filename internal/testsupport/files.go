package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TrackSpec describes one track entry for a generated cue sheet fixture.
type TrackSpec struct {
	Name string
	Mode string
	Size int
}

// WriteFile creates path (and parent directories) filled with size bytes.
func WriteFile(t *testing.T, path string, size int) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteText creates path with the given contents.
func WriteText(t *testing.T, path, contents string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCueWithBins writes a multi-file cue sheet named <stem>.cue inside dir
// together with its track binaries, and returns the cue path. Each TrackSpec
// becomes one FILE/TRACK pair; tracks are numbered in order starting at 1.
func WriteCueWithBins(t *testing.T, dir, stem string, tracks []TrackSpec) string {
	t.Helper()
	var buf bytes.Buffer
	for i, track := range tracks {
		fmt.Fprintf(&buf, "FILE %q BINARY\n", track.Name)
		fmt.Fprintf(&buf, "  TRACK %02d %s\n", i+1, track.Mode)
		if track.Mode == "AUDIO" {
			buf.WriteString("    INDEX 00 00:00:00\n")
		}
		buf.WriteString("    INDEX 01 00:00:00\n")
		WriteFile(t, filepath.Join(dir, track.Name), track.Size)
	}
	return WriteText(t, filepath.Join(dir, stem+".cue"), buf.String())
}

// ReadFile returns the contents of path, failing the test on error.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
