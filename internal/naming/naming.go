package naming

import (
	"fmt"
	"regexp"
	"strings"

	"retroforge/internal/disc"
	"retroforge/internal/grouping"
	"retroforge/internal/textutil"
)

// Options control the opt-in/opt-out normalizations.
type Options struct {
	// RestoreArticles moves a trailing ", The"/", A"/", An" to the front.
	RestoreArticles bool
	// KeepLanguageTags retains parenthetical language-code lists such as
	// "(En,Fr)", which are stripped by default.
	KeepLanguageTags bool
}

var (
	trailingArticlePattern = regexp.MustCompile(`^(.*), (The|A|An)$`)
	// Language-code lists: two-letter codes, at least two of them, comma
	// separated, e.g. (En,Fr) or (En,Fr,De,Es,It).
	languageTagPattern   = regexp.MustCompile(`\(\s*[A-Z][a-z](?:\s*,\s*[A-Z][a-z])+\s*\)`)
	discSuffixPattern    = regexp.MustCompile(`(?i)\(\s*(?:disc|disk|cd|dvd)\s+(\d+)(?:\s+of\s+\d+)?\s*\)`)
	discRangePattern     = regexp.MustCompile(`(?i)\(\s*discs\s+\d+\s*-\s*\d+\s*\)`)
	parentheticalPattern = regexp.MustCompile(`\(([^)]*)\)`)
)

// Title normalizes a raw title for filename composition: disc suffixes
// removed (canonical "(Disc N)" is re-appended by the callers that need it),
// duplicate region tokens collapsed, language tags stripped unless retained,
// and the trailing article restored when requested.
func Title(raw, region string, opts Options) string {
	title := discSuffixPattern.ReplaceAllString(raw, " ")
	title = discRangePattern.ReplaceAllString(title, " ")
	if region != "" {
		title = stripRegionDuplicates(title, region)
	}
	if !opts.KeepLanguageTags {
		title = languageTagPattern.ReplaceAllString(title, " ")
	}
	title = strings.Join(strings.Fields(title), " ")
	if opts.RestoreArticles {
		if m := trailingArticlePattern.FindStringSubmatch(title); m != nil {
			title = m[2] + " " + m[1]
		}
	}
	return title
}

// stripRegionDuplicates removes parenthetical tokens naming the already
// detected region, so "Game (USA)" with region USA does not render as
// "Game (USA) (USA)".
func stripRegionDuplicates(title, region string) string {
	for _, m := range parentheticalPattern.FindAllStringSubmatch(title, -1) {
		canonical, ok := disc.NormalizeRegion(m[1])
		if ok && canonical == region {
			title = strings.ReplaceAll(title, m[0], " ")
		}
	}
	return title
}

// DiscStem composes the canonical filename stem for one disc of a group:
// "<Title> (<Region>) [<Serial>] (Disc <N>)". The disc segment appears only
// for multi-disc groups; absent values drop their segment entirely.
func DiscStem(g *grouping.Group, d *disc.Descriptor, opts Options) string {
	return stem(g, d, 0, opts)
}

// TrackStem composes the canonical stem for a binary track file belonging to
// a multi-track disc. The track segment sits directly after the region and is
// always zero-padded to two digits.
func TrackStem(g *grouping.Group, d *disc.Descriptor, trackNumber int, opts Options) string {
	return stem(g, d, trackNumber, opts)
}

// PlaylistStem composes the canonical stem for the group playlist. A playlist
// represents the whole title, so the serial segment is always omitted.
func PlaylistStem(g *grouping.Group, opts Options) string {
	parts := []string{Title(g.Title, g.Region, opts)}
	if g.Region != "" {
		parts = append(parts, "("+g.Region+")")
	}
	return textutil.SanitizeFileName(strings.Join(parts, " "))
}

func stem(g *grouping.Group, d *disc.Descriptor, trackNumber int, opts Options) string {
	parts := []string{Title(g.Title, g.Region, opts)}
	if g.Region != "" {
		parts = append(parts, "("+g.Region+")")
	}
	if trackNumber > 0 {
		parts = append(parts, fmt.Sprintf("(Track %02d)", trackNumber))
	}
	if d.Serial != "" {
		parts = append(parts, "["+d.Serial+"]")
	}
	if g.MultiDisc {
		number := d.DiscNumber
		if number <= 0 {
			number = 1
		}
		parts = append(parts, fmt.Sprintf("(Disc %d)", number))
	}
	return textutil.SanitizeFileName(strings.Join(parts, " "))
}
