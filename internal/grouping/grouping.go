package grouping

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"retroforge/internal/classify"
	"retroforge/internal/disc"
)

// Group is the unit of operation for rename, convert, and playlist planning.
type Group struct {
	// Title is the shared normalized title (disc-suffix removed,
	// whitespace-collapsed). Not yet article-restored or sanitized; the
	// naming service owns presentation.
	Title  string
	Region string
	// Discs is ordered by disc number, missing numbers defaulting to 1,
	// stable on scan order for ties. For multi-disc groups missing numbers
	// are reconciled to the disc's ordinal position.
	Discs []*disc.Descriptor
	// RootFolder is set when the group's members reside in a directory
	// dedicated to this title.
	RootFolder string
	// Playlist is the path of an existing playlist file inside RootFolder,
	// when exactly one is present.
	Playlist  string
	MultiDisc bool
}

// legacy "(Discs 1-4)" range token, stripped for key purposes alongside the
// regular disc tokens.
var discRangePattern = regexp.MustCompile(`(?i)\(\s*discs\s+\d+\s*-\s*\d+\s*\)`)

var discSuffixPattern = regexp.MustCompile(`(?i)\(\s*(?:disc|disk|cd|dvd)\s+\d+(?:\s+of\s+\d+)?\s*\)`)

// NormalizedTitle strips disc-suffix tokens and collapses whitespace. Titles
// differing only inside a disc suffix normalize equal and therefore group.
func NormalizedTitle(title string) string {
	title = discSuffixPattern.ReplaceAllString(title, " ")
	title = discRangePattern.ReplaceAllString(title, " ")
	return strings.Join(strings.Fields(title), " ")
}

// BuildGroups partitions descriptors into title groups. The root path bounds
// the dedicated-folder heuristic; descriptors are consumed in slice order,
// which is the tie-break for equal disc numbers. Grouping only reads the
// filesystem (directory listings for the root-folder heuristic), never
// writes.
func BuildGroups(root string, descriptors []*disc.Descriptor) []*Group {
	type bucket struct {
		key   string
		discs []*disc.Descriptor
	}

	// Stage 1: bucket by identity key. Serial is the strongest signal;
	// cheat/educational discs get a synthetic unique key so they can never
	// merge into a multi-disc set.
	order := make([]string, 0, len(descriptors))
	buckets := make(map[string]*bucket)
	for _, d := range descriptors {
		key := bucketKey(d)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.discs = append(b.discs, d)
	}

	// Stage 2: merge mergeable buckets whose discs share the exact same
	// normalized title (and region). Substring containment is not enough;
	// separate-SKU releases keep distinct qualifiers in the title.
	merged := make([]*Group, 0, len(order))
	byTitle := make(map[string]*Group)
	for _, key := range order {
		b := buckets[key]
		first := b.discs[0]
		if isSolo(first) {
			merged = append(merged, &Group{
				Title:  NormalizedTitle(first.Title),
				Region: first.Region,
				Discs:  b.discs,
			})
			continue
		}
		titleKey := mergeKey(first)
		if g, ok := byTitle[titleKey]; ok {
			g.Discs = append(g.Discs, b.discs...)
			continue
		}
		g := &Group{
			Title:  NormalizedTitle(first.Title),
			Region: first.Region,
			Discs:  append([]*disc.Descriptor(nil), b.discs...),
		}
		byTitle[titleKey] = g
		merged = append(merged, g)
	}

	for _, g := range merged {
		finishGroup(g, root)
	}
	return merged
}

func bucketKey(d *disc.Descriptor) string {
	if isSolo(d) {
		return "solo:" + uuid.NewString()
	}
	if d.Serial != "" {
		return "serial:" + d.Serial
	}
	return "title:" + mergeKey(d)
}

func mergeKey(d *disc.Descriptor) string {
	return strings.ToLower(NormalizedTitle(d.Title)) + "|" + strings.ToLower(d.Region)
}

func isSolo(d *disc.Descriptor) bool {
	return d.Content == classify.Cheat || d.Content == classify.Educational
}

func finishGroup(g *Group, root string) {
	sortDiscs(g.Discs)

	// The same logical disc can be present in both formats (cue plus
	// container); multi-disc means two or more distinct discs.
	multi := len(g.LogicalDiscs()) >= 2
	for _, d := range g.Discs {
		if isSolo(d) {
			multi = false
		}
	}
	g.MultiDisc = multi

	if multi {
		reconcileDiscNumbers(g)
	}

	g.RootFolder = detectRootFolder(g, root)
	if g.RootFolder != "" {
		g.Playlist = detectPlaylist(g.RootFolder)
	}
}

// LogicalDiscs partitions the group's descriptors by disc identity (serial
// when present, otherwise the filename stem), preserving disc order. Each
// partition holds every storage format of one physical disc.
func (g *Group) LogicalDiscs() [][]*disc.Descriptor {
	var ordered [][]*disc.Descriptor
	index := make(map[string]int)
	for _, d := range g.Discs {
		key := logicalKey(d)
		if i, ok := index[key]; ok {
			ordered[i] = append(ordered[i], d)
			continue
		}
		index[key] = len(ordered)
		ordered = append(ordered, []*disc.Descriptor{d})
	}
	return ordered
}

func logicalKey(d *disc.Descriptor) string {
	if d.Serial != "" {
		return "s:" + d.Serial
	}
	stem := strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
	return "f:" + strings.ToLower(stem)
}

// sortDiscs orders by disc number with missing numbers defaulting to 1,
// preserving scan order on ties.
func sortDiscs(discs []*disc.Descriptor) {
	sort.SliceStable(discs, func(i, j int) bool {
		return effectiveNumber(discs[i]) < effectiveNumber(discs[j])
	})
}

func effectiveNumber(d *disc.Descriptor) int {
	if d.DiscNumber <= 0 {
		return 1
	}
	return d.DiscNumber
}

// reconcileDiscNumbers fills in missing disc numbers for a multi-disc group.
// A descriptor may know its own number without knowing the set size; when any
// logical disc lacks a number the set is renumbered by sorted position so
// downstream naming always has a concrete disc number. Descriptors of the
// same logical disc (multiple formats) share one number.
func reconcileDiscNumbers(g *Group) {
	logical := g.LogicalDiscs()

	complete := true
	for _, formats := range logical {
		if formats[0].DiscNumber <= 0 {
			complete = false
			break
		}
	}
	if !complete {
		for i, formats := range logical {
			for _, d := range formats {
				d.DiscNumber = i + 1
			}
		}
	}
	for _, d := range g.Discs {
		if d.DiscCount < len(logical) {
			d.DiscCount = len(logical)
		}
	}
}

// detectRootFolder reports the directory dedicated to this group: all discs
// share it, it is not the scan root, and either the group spans multiple
// discs (a strong signal) or the directory holds nothing but the group's own
// files.
func detectRootFolder(g *Group, root string) string {
	dir := g.Discs[0].Dir()
	for _, d := range g.Discs[1:] {
		if d.Dir() != dir {
			return ""
		}
	}
	if filepath.Clean(dir) == filepath.Clean(root) {
		return ""
	}
	if len(g.Discs) > 1 {
		return dir
	}
	if dirHoldsOnlyGroup(dir, g) {
		return dir
	}
	return ""
}

func dirHoldsOnlyGroup(dir string, g *Group) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	owned := make(map[string]struct{})
	for _, d := range g.Discs {
		owned[filepath.Base(d.Path)] = struct{}{}
		for _, bin := range d.BinFiles {
			owned[filepath.Base(bin)] = struct{}{}
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return false
		}
		name := entry.Name()
		if _, ok := owned[name]; ok {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".m3u") {
			continue
		}
		return false
	}
	return true
}

func detectPlaylist(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var found string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".m3u") {
			continue
		}
		if found != "" {
			return ""
		}
		found = filepath.Join(dir, entry.Name())
	}
	return found
}

// SortGroups orders groups for presentation and planning: locale-aware title
// order, then region. Plans therefore have deterministic operation order
// regardless of scan order.
func SortGroups(groups []*Group) {
	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(groups, func(i, j int) bool {
		if cmp := collator.CompareString(groups[i].Title, groups[j].Title); cmp != 0 {
			return cmp < 0
		}
		return groups[i].Region < groups[j].Region
	})
}
