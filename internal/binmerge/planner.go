package binmerge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"retroforge/internal/cuesheet"
	"retroforge/internal/disc"
	"retroforge/internal/fileutil"
)

// Track is one source binary in merge order.
type Track struct {
	Path  string
	Bytes int64
	Audio bool
}

// Operation is one planned merge: every source track of one cue sheet
// concatenated into DestBin, with the sheet rewritten in place.
type Operation struct {
	CuePath string
	Tracks  []Track
	DestBin string
	// CleanupDirs lists directories that hold only the source tracks and
	// become removable once the sources are deleted. Deepest first.
	CleanupDirs []string
	TotalBytes  int64
}

// Plan holds the merge batch plus planning-time skips.
type Plan struct {
	Operations []Operation
	Skipped    []string
}

func (p *Plan) Empty() bool { return len(p.Operations) == 0 }

// BuildPlan emits one operation per disc whose cue sheet references more
// than one FILE. Discs with missing tracks are skipped with a reason.
func BuildPlan(descriptors []*disc.Descriptor) (*Plan, error) {
	plan := &Plan{}
	for _, d := range descriptors {
		// Count referenced tracks, present or not, so a sheet with a lost
		// track still surfaces as a skip instead of vanishing from the plan.
		if d.Format != disc.FormatBinCue || len(d.BinFiles)+len(d.MissingBins) < 2 {
			continue
		}
		if !d.Convertible() {
			plan.Skipped = append(plan.Skipped,
				fmt.Sprintf("%s: missing BIN files", filepath.Base(d.Path)))
			continue
		}
		op, err := planOne(d)
		if err != nil {
			plan.Skipped = append(plan.Skipped,
				fmt.Sprintf("%s: %v", filepath.Base(d.Path), err))
			continue
		}
		plan.Operations = append(plan.Operations, op)
	}
	return plan, nil
}

func planOne(d *disc.Descriptor) (Operation, error) {
	sheet, err := cuesheet.Parse(d.Path)
	if err != nil {
		return Operation{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
	dest := filepath.Join(d.Dir(), stem+".bin")

	op := Operation{CuePath: d.Path, DestBin: dest}
	for i, file := range sheet.Files {
		path := d.BinFiles[i]
		if fileutil.SameFold(path, dest) {
			return Operation{}, fmt.Errorf("source track %s collides with merge destination", filepath.Base(path))
		}
		info, err := os.Stat(path)
		if err != nil {
			return Operation{}, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
		}
		audio := false
		for _, track := range file.Tracks {
			if track.IsAudio() {
				audio = true
			}
		}
		op.Tracks = append(op.Tracks, Track{Path: path, Bytes: info.Size(), Audio: audio})
		op.TotalBytes += info.Size()
	}

	op.CleanupDirs = cleanupDirs(op, d.Dir())
	return op, nil
}

// cleanupDirs collects source-track directories below the cue's own
// directory, deepest first, so post-delete cleanup can walk upward.
func cleanupDirs(op Operation, cueDir string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, track := range op.Tracks {
		dir := filepath.Dir(track.Path)
		if fileutil.SameFold(dir, cueDir) {
			continue
		}
		key := strings.ToLower(filepath.Clean(dir))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
