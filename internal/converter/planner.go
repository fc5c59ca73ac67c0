package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"retroforge/internal/classify"
	"retroforge/internal/disc"
	"retroforge/internal/grouping"
	"retroforge/internal/naming"
	"retroforge/internal/playlist"
)

// Direction selects which way a conversion runs.
type Direction string

const (
	BinCueToContainer Direction = "bincue-to-container"
	ContainerToBinCue Direction = "container-to-bincue"
)

// ContainerExt is the extension of the compressed disc-image format.
const ContainerExt = ".chd"

// Operation is one planned conversion.
type Operation struct {
	Source    string
	Dest      string
	Direction Direction
	// DeleteSource removes the source files after a verified success.
	DeleteSource bool
	// AssociatedDeletes lists files removed together with the source, i.e.
	// the track binaries belonging to a cue sheet.
	AssociatedDeletes []string
	// SourceBytes approximates the projected output for the free-space
	// preflight. Zero means unknown.
	SourceBytes int64
	Description string
}

// Plan is the full conversion batch for one invocation. Playlists are
// written only after every conversion completes.
type Plan struct {
	Operations []Operation
	Playlists  []playlist.Operation
	// Skipped records titles and discs excluded from the batch, with reasons.
	Skipped []string
}

func (p *Plan) Empty() bool { return len(p.Operations) == 0 }

// Options configure planning.
type Options struct {
	DeleteSource bool
	ContentMode  classify.HandlingMode
	Naming       naming.Options
}

// BuildPlan computes the conversion batch for the requested direction.
// Destination uniqueness within the plan follows from canonical naming plus
// the per-logical-disc iteration; two operations never share a destination.
func BuildPlan(groups []*grouping.Group, direction Direction, opts Options) (*Plan, error) {
	if opts.ContentMode == classify.HandlingAsDisc {
		return nil, classify.ErrAsDiscUnsupported("convert")
	}

	plan := &Plan{}
	for _, g := range groups {
		if skipGroup(g, opts.ContentMode) {
			continue
		}
		switch direction {
		case BinCueToContainer:
			planToContainer(plan, g, opts)
		case ContainerToBinCue:
			planToBinCue(plan, g, opts)
		}
	}
	return plan, nil
}

func skipGroup(g *grouping.Group, mode classify.HandlingMode) bool {
	if mode != classify.HandlingOmit {
		return false
	}
	for _, d := range g.Discs {
		if d.Content == classify.Cheat || d.Content == classify.Educational {
			return true
		}
	}
	return false
}

func planToContainer(plan *Plan, g *grouping.Group, opts Options) {
	logical := g.LogicalDiscs()

	allContainer := true
	anyContainer := false
	anySheet := false
	for _, formats := range logical {
		hasContainer := false
		for _, d := range formats {
			switch d.Format {
			case disc.FormatContainer:
				hasContainer = true
				anyContainer = true
			case disc.FormatBinCue:
				anySheet = true
			}
		}
		if !hasContainer {
			allContainer = false
		}
	}
	if allContainer {
		plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: already in container format", g.Title))
		return
	}
	if anyContainer && anySheet {
		plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: prefer existing container", g.Title))
		return
	}

	var dests []string
	complete := true
	for _, formats := range logical {
		d := sheetOf(formats)
		if d == nil {
			complete = false
			continue
		}
		if !d.Convertible() {
			plan.Skipped = append(plan.Skipped,
				fmt.Sprintf("%s: missing BIN files", filepath.Base(d.Path)))
			complete = false
			continue
		}
		dest := filepath.Join(d.Dir(), naming.DiscStem(g, d, opts.Naming)+ContainerExt)
		deletes := append([]string(nil), d.BinFiles...)
		plan.Operations = append(plan.Operations, Operation{
			Source:            d.Path,
			Dest:              dest,
			Direction:         BinCueToContainer,
			DeleteSource:      opts.DeleteSource,
			AssociatedDeletes: deletes,
			SourceBytes:       totalSize(d.BinFiles),
			Description:       fmt.Sprintf("compress %s", filepath.Base(d.Path)),
		})
		dests = append(dests, filepath.Base(dest))
	}

	// A playlist listing a disc that was skipped would dangle, so only fully
	// planned multi-disc titles get one.
	if g.MultiDisc && complete && len(dests) >= 2 {
		dir := g.RootFolder
		if dir == "" {
			dir = g.Discs[0].Dir()
		}
		path := filepath.Join(dir, naming.PlaylistStem(g, opts.Naming)+playlist.Ext)
		op, changed, err := playlist.Compose(path, g.Title, g.Region, dests)
		if err == nil && changed {
			plan.Playlists = append(plan.Playlists, op)
		}
	}
}

func planToBinCue(plan *Plan, g *grouping.Group, opts Options) {
	for _, formats := range g.LogicalDiscs() {
		if sheetOf(formats) != nil {
			// The cue/bin form already exists; nothing to extract.
			continue
		}
		var container *disc.Descriptor
		for _, d := range formats {
			if d.Format == disc.FormatContainer {
				container = d
				break
			}
		}
		if container == nil {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(container.Path), filepath.Ext(container.Path))
		dest := filepath.Join(container.Dir(), stem+".cue")
		plan.Operations = append(plan.Operations, Operation{
			Source:       container.Path,
			Dest:         dest,
			Direction:    ContainerToBinCue,
			DeleteSource: opts.DeleteSource,
			SourceBytes:  totalSize([]string{container.Path}),
			Description:  fmt.Sprintf("extract %s", filepath.Base(container.Path)),
		})
	}
}

func totalSize(paths []string) int64 {
	var total int64
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}

func sheetOf(formats []*disc.Descriptor) *disc.Descriptor {
	for _, d := range formats {
		if d.Format == disc.FormatBinCue {
			return d
		}
	}
	return nil
}
