package renamer

import (
	"fmt"
	"path/filepath"
	"strings"

	"retroforge/internal/classify"
	"retroforge/internal/disc"
	"retroforge/internal/fileutil"
	"retroforge/internal/grouping"
	"retroforge/internal/naming"
)

// Kind discriminates planned operations.
type Kind string

const (
	// KindRename changes a file's name within its directory.
	KindRename Kind = "rename"
	// KindMove relocates a file to another directory.
	KindMove Kind = "move"
	// KindDeleteFolder removes a now-empty per-game folder. Folder deletes
	// always execute after every file operation in the plan.
	KindDeleteFolder Kind = "delete-folder"
)

// Operation is one planned filesystem mutation.
type Operation struct {
	Kind        Kind
	Source      string
	Dest        string
	Description string

	// Retarget maps old to new track binary base names for cue sheets whose
	// binaries are renamed in the same plan. Applied to the sheet text after
	// the sheet file itself is renamed.
	Retarget map[string]string
}

// Plan is a flat ordered list of operations plus planning-time warnings.
type Plan struct {
	Operations []Operation
	Warnings   []string
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool { return len(p.Operations) == 0 }

// Options configure planning.
type Options struct {
	// Flatten moves a group's files out of its dedicated folder into the
	// scan root and schedules the folder for deletion.
	Flatten     bool
	ContentMode classify.HandlingMode
	Naming      naming.Options
}

// BuildPlan computes the operations that bring every group to canonical
// naming. Destination uniqueness is a plan invariant: a computed destination
// already claimed by an earlier operation is skipped with a warning instead
// of being emitted twice.
func BuildPlan(root string, groups []*grouping.Group, opts Options) (*Plan, error) {
	if opts.ContentMode == classify.HandlingAsDisc {
		return nil, classify.ErrAsDiscUnsupported("rename")
	}

	plan := &Plan{}
	claimed := make(map[string]struct{})
	var folders []string

	for _, g := range groups {
		if skipGroup(g, opts.ContentMode) {
			continue
		}
		flatten := opts.Flatten && g.RootFolder != ""
		for _, d := range g.Discs {
			planDisc(plan, claimed, g, d, root, flatten, opts)
		}
		if g.Playlist != "" {
			destDir := filepath.Dir(g.Playlist)
			if flatten {
				destDir = root
			}
			dest := filepath.Join(destDir, naming.PlaylistStem(g, opts.Naming)+filepath.Ext(g.Playlist))
			addFileOp(plan, claimed, g.Playlist, dest, "playlist")
		}
		if flatten {
			folders = append(folders, g.RootFolder)
		}
	}

	seen := make(map[string]struct{})
	for _, folder := range folders {
		key := strings.ToLower(filepath.Clean(folder))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		plan.Operations = append(plan.Operations, Operation{
			Kind:        KindDeleteFolder,
			Source:      folder,
			Description: fmt.Sprintf("delete empty folder %s", filepath.Base(folder)),
		})
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

func planDisc(plan *Plan, claimed map[string]struct{}, g *grouping.Group, d *disc.Descriptor, root string, flatten bool, opts Options) {
	destDir := d.Dir()
	if flatten {
		destDir = root
	}
	stem := naming.DiscStem(g, d, opts.Naming)

	retarget := make(map[string]string)
	if d.Format == disc.FormatBinCue {
		for i, bin := range d.BinFiles {
			binStem := stem
			if len(d.BinFiles) > 1 {
				binStem = naming.TrackStem(g, d, i+1, opts.Naming)
			}
			dest := filepath.Join(destDir, binStem+strings.ToLower(filepath.Ext(bin)))
			if addFileOp(plan, claimed, bin, dest, "track binary") {
				if filepath.Base(bin) != filepath.Base(dest) {
					retarget[filepath.Base(bin)] = filepath.Base(dest)
				}
			}
		}
	}

	dest := filepath.Join(destDir, stem+d.Ext())
	if op := addFileOpReturning(plan, claimed, d.Path, dest, describeFormat(d)); op != nil && len(retarget) > 0 {
		op.Retarget = retarget
	} else if op == nil && len(retarget) > 0 {
		// The sheet keeps its place but its binaries were renamed; rewrite
		// the FILE lines in place.
		plan.Operations = append(plan.Operations, Operation{
			Kind:        KindRename,
			Source:      d.Path,
			Dest:        d.Path,
			Description: fmt.Sprintf("rewrite %s track references", filepath.Base(d.Path)),
			Retarget:    retarget,
		})
	}
}

func describeFormat(d *disc.Descriptor) string {
	if d.Format == disc.FormatContainer {
		return "disc image"
	}
	return "cue sheet"
}

// addFileOp plans a rename or move for src. Returns true when an operation
// was emitted, false when the file is already canonical or the destination
// is claimed by an earlier operation.
func addFileOp(plan *Plan, claimed map[string]struct{}, src, dest, what string) bool {
	return addFileOpReturning(plan, claimed, src, dest, what) != nil
}

func addFileOpReturning(plan *Plan, claimed map[string]struct{}, src, dest, what string) *Operation {
	if fileutil.SameFold(src, dest) {
		return nil
	}
	key := strings.ToLower(filepath.Clean(dest))
	if _, ok := claimed[key]; ok {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("destination collision for %s: %s", what, dest))
		return nil
	}
	claimed[key] = struct{}{}

	kind := KindMove
	verb := "move"
	if fileutil.SameFold(filepath.Dir(src), filepath.Dir(dest)) {
		kind = KindRename
		verb = "rename"
	}
	plan.Operations = append(plan.Operations, Operation{
		Kind:        kind,
		Source:      src,
		Dest:        dest,
		Description: fmt.Sprintf("%s %s %s to %s", verb, what, filepath.Base(src), filepath.Base(dest)),
	})
	return &plan.Operations[len(plan.Operations)-1]
}
