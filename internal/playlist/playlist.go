package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"retroforge/internal/disc"
	"retroforge/internal/grouping"
	"retroforge/internal/naming"
	"retroforge/internal/services"
)

// Ext is the playlist file extension.
const Ext = ".m3u"

// OpType discriminates playlist operations.
type OpType string

const (
	Create OpType = "create"
	Update OpType = "update"
)

// Operation is one planned playlist write. Entries are filenames relative to
// the playlist's own directory, in disc order.
type Operation struct {
	Path    string
	Title   string
	Region  string
	Entries []string
	Type    OpType
	// ExistingContent holds the current file body for Update operations; it
	// is written to a .bak sibling before the overwrite.
	ExistingContent string
}

// Body renders the playlist text: one relative filename per line, UTF-8, no
// BOM, trailing newline.
func (o *Operation) Body() string {
	return strings.Join(o.Entries, "\n") + "\n"
}

// Options configure planning.
type Options struct {
	// PreferredExt forces the referenced disc-file extension (".chd" or
	// ".cue"). Empty selects containers when every disc has one, else cue
	// sheets.
	PreferredExt string
	Naming       naming.Options
}

// Plan emits one operation per multi-disc group whose playlist is missing or
// stale. Single-disc and cheat/educational groups never get a playlist. A
// group that cannot be planned is recorded in skipped with the reason and the
// remaining groups still plan.
func Plan(groups []*grouping.Group, opts Options) (ops []Operation, skipped []string) {
	for _, g := range groups {
		if !g.MultiDisc {
			continue
		}
		entries, err := groupEntries(g, opts)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", g.Title, err))
			continue
		}
		path := g.Playlist
		if path == "" {
			path = filepath.Join(playlistDir(g), naming.PlaylistStem(g, opts.Naming)+Ext)
		}
		op, changed, err := Compose(path, g.Title, g.Region, entries)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", g.Title, err))
			continue
		}
		if changed {
			ops = append(ops, op)
		}
	}
	return ops, skipped
}

// Compose builds an operation for path with the given entries, comparing
// against any existing file. The second return is false when the file already
// holds exactly the computed content.
func Compose(path, title, region string, entries []string) (Operation, bool, error) {
	op := Operation{Path: path, Title: title, Region: region, Entries: entries, Type: Create}
	current, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return op, true, nil
		}
		return Operation{}, false, services.Wrap(services.ErrTransient, "playlist", "compose",
			fmt.Sprintf("read %s", path), err)
	}
	if string(current) == op.Body() {
		return op, false, nil
	}
	op.Type = Update
	op.ExistingContent = string(current)
	return op, true, nil
}

// Apply writes the playlist. Updates first copy the existing content to a
// .bak sibling so a bad overwrite can be undone by hand.
func Apply(op Operation) error {
	if op.Type == Update {
		backup := op.Path + ".bak"
		if err := os.WriteFile(backup, []byte(op.ExistingContent), 0o644); err != nil {
			return services.Wrap(services.ErrTransient, "playlist", "backup",
				fmt.Sprintf("write %s", backup), err)
		}
	}
	if err := os.WriteFile(op.Path, []byte(op.Body()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "playlist", "write",
			fmt.Sprintf("write %s", op.Path), err)
	}
	return nil
}

func groupEntries(g *grouping.Group, opts Options) ([]string, error) {
	var entries []string
	for _, formats := range g.LogicalDiscs() {
		chosen, err := pickFormat(formats, opts.PreferredExt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, filepath.Base(chosen.Path))
	}
	return entries, nil
}

// pickFormat selects which stored format of one logical disc the playlist
// references: the caller's preferred extension when stated, else the
// container over the cue sheet.
func pickFormat(formats []*disc.Descriptor, preferred string) (*disc.Descriptor, error) {
	if preferred != "" {
		for _, d := range formats {
			if strings.EqualFold(d.Ext(), preferred) {
				return d, nil
			}
		}
		return nil, services.Wrap(services.ErrValidation, "playlist", "pick_format",
			fmt.Sprintf("no %s file for disc %s", preferred, filepath.Base(formats[0].Path)), nil)
	}
	for _, d := range formats {
		if d.Format == disc.FormatContainer {
			return d, nil
		}
	}
	return formats[0], nil
}

func playlistDir(g *grouping.Group) string {
	if g.RootFolder != "" {
		return g.RootFolder
	}
	return g.Discs[0].Dir()
}
