package disc

import (
	"path/filepath"
	"strings"

	"retroforge/internal/classify"
)

// Format identifies how a disc image is stored on disk.
type Format string

const (
	// FormatBinCue is a cue sheet plus one or more binary track files.
	FormatBinCue Format = "bincue"
	// FormatContainer is a single-file compressed disc image (CHD).
	FormatContainer Format = "chd"
)

// Default warning strings attached by the parser and scanner.
const (
	WarnSerialNotFound = "serial not found"
	WarnEducational    = "Lightspan educational disc detected"
	WarnAudioTrack     = "audio track file; not an independent disc"
	WarnMissingBins    = "missing BIN files"
	WarnOrphanBin      = "no cue sheet references this file"
)

// Descriptor is one physical file resolved to disc metadata.
type Descriptor struct {
	Path    string
	Title   string
	Region  string
	Serial  string
	Version string

	// DiscNumber/DiscCount are zero when the filename does not state them.
	// The grouper reconciles missing numbers within multi-disc groups.
	DiscNumber int
	DiscCount  int

	// TrackNumber/TrackCount are set only for BIN files that are members of
	// a multi-track cue sheet.
	TrackNumber int
	TrackCount  int
	AudioTrack  bool

	Content classify.ContentType
	Format  Format

	// BinFiles lists the track binaries referenced by this descriptor's cue
	// sheet, resolved to absolute paths and in FILE directive order. Empty
	// for containers and orphan BINs.
	BinFiles []string
	// MissingBins lists referenced track binaries absent from disk. Any
	// entry blocks conversion planning but not enumeration.
	MissingBins []string

	Warnings []string
}

// Warn appends a warning, skipping duplicates.
func (d *Descriptor) Warn(message string) {
	for _, w := range d.Warnings {
		if w == message {
			return
		}
	}
	d.Warnings = append(d.Warnings, message)
}

// Ext returns the lowercase extension of the descriptor path.
func (d *Descriptor) Ext() string {
	return strings.ToLower(filepath.Ext(d.Path))
}

// Dir returns the directory containing the descriptor file.
func (d *Descriptor) Dir() string {
	return filepath.Dir(d.Path)
}

// Convertible reports whether the disc can enter conversion planning.
func (d *Descriptor) Convertible() bool {
	return len(d.MissingBins) == 0
}
