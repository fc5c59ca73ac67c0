package cuesheet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Track is one TRACK directive inside a FILE block. Lines holds the TRACK
// line itself plus every following line (INDEX, PREGAP, FLAGS, REM) verbatim,
// including original indentation.
type Track struct {
	Number int
	Mode   string
	Lines  []string
}

// IsAudio reports whether the track mode is AUDIO.
func (t Track) IsAudio() bool {
	return strings.EqualFold(strings.TrimSpace(t.Mode), "AUDIO")
}

// IsData reports whether the track mode is a MODE1/MODE2 data mode.
func (t Track) IsData() bool {
	mode := strings.ToUpper(strings.TrimSpace(t.Mode))
	return strings.HasPrefix(mode, "MODE1") || strings.HasPrefix(mode, "MODE2")
}

// File is one FILE directive and the tracks it contains.
type File struct {
	Name   string
	Type   string
	Tracks []Track
}

// Sheet is a parsed cue sheet.
type Sheet struct {
	Path string
	// Preamble holds lines appearing before the first FILE directive
	// (REM, CATALOG, and any unrecognized directives), verbatim.
	Preamble []string
	Files    []File
}

var (
	fileLinePattern  = regexp.MustCompile(`(?i)^\s*FILE\s+"([^"]*)"\s+(\S+)\s*$`)
	trackLinePattern = regexp.MustCompile(`(?i)^\s*TRACK\s+(\d+)\s+(\S+)\s*$`)
)

// Parse reads and parses the cue sheet at path.
func Parse(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue sheet: %w", err)
	}
	defer f.Close()
	return ParseReader(f, path)
}

// ParseReader parses cue sheet text from r. The path is recorded on the
// returned sheet for error reporting and relative file resolution.
func ParseReader(r io.Reader, path string) (*Sheet, error) {
	sheet := &Sheet{Path: path}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := fileLinePattern.FindStringSubmatch(line); m != nil {
			sheet.Files = append(sheet.Files, File{Name: m[1], Type: strings.ToUpper(m[2])})
			continue
		}
		if len(sheet.Files) == 0 {
			sheet.Preamble = append(sheet.Preamble, line)
			continue
		}
		current := &sheet.Files[len(sheet.Files)-1]
		if m := trackLinePattern.FindStringSubmatch(line); m != nil {
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("cue sheet %s: track number %q: %w", path, m[1], err)
			}
			current.Tracks = append(current.Tracks, Track{
				Number: number,
				Mode:   strings.ToUpper(m[2]),
				Lines:  []string{line},
			})
			continue
		}
		// INDEX, PREGAP, and anything unrecognized belongs to the most
		// recent track; a line between FILE and the first TRACK is kept on
		// the file by prepending it to the first track encountered later.
		if len(current.Tracks) == 0 {
			sheet.Preamble = append(sheet.Preamble, line)
			continue
		}
		track := &current.Tracks[len(current.Tracks)-1]
		track.Lines = append(track.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cue sheet %s: %w", path, err)
	}
	if len(sheet.Files) == 0 {
		return nil, fmt.Errorf("cue sheet %s: no FILE directive found", path)
	}
	return sheet, nil
}

// BinFiles returns the referenced file names in FILE directive order.
func (s *Sheet) BinFiles() []string {
	names := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		names = append(names, f.Name)
	}
	return names
}

// MultiFile reports whether the sheet references more than one file.
func (s *Sheet) MultiFile() bool {
	return len(s.Files) > 1
}

// Tracks returns every track in sheet order.
func (s *Sheet) Tracks() []Track {
	var tracks []Track
	for _, f := range s.Files {
		tracks = append(tracks, f.Tracks...)
	}
	return tracks
}

// Rewrite renders the sheet with every FILE directive collapsed into a single
// declaration referencing dest. TRACK and INDEX lines are emitted verbatim in
// original order; this is only correct when the referenced binaries are
// concatenated gap-free in the same order.
func (s *Sheet) Rewrite(dest string) []byte {
	var b strings.Builder
	for _, line := range s.Preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "FILE %q BINARY\n", dest)
	for _, f := range s.Files {
		for _, t := range f.Tracks {
			for _, line := range t.Lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return []byte(b.String())
}

// Retarget renders the sheet with file names substituted per the given
// mapping (old name to new name); files absent from the map keep their name.
// Track content is preserved verbatim. Used when track binaries are renamed
// without being merged.
func (s *Sheet) Retarget(names map[string]string) []byte {
	var b strings.Builder
	for _, line := range s.Preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, f := range s.Files {
		name := f.Name
		if renamed, ok := names[f.Name]; ok {
			name = renamed
		}
		fmt.Fprintf(&b, "FILE %q %s\n", name, f.Type)
		for _, t := range f.Tracks {
			for _, line := range t.Lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return []byte(b.String())
}
