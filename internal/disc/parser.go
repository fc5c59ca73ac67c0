package disc

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"retroforge/internal/classify"
)

var (
	// (Disc 1), (Disc 1 of 2), (CD 2), (DVD 1 of 3), (Disk 2 of 2)
	discTokenPattern = regexp.MustCompile(`(?i)\(\s*(?:disc|disk|cd|dvd)\s+(\d+)(?:\s+of\s+(\d+))?\s*\)`)
	// [SLUS-00001] and the rest of the five-digit catalog families.
	serialPattern = regexp.MustCompile(`(?i)\[\s*((?:SLUS|SCUS|SLPS|SCPS|SLES|SCES)-\d{5})\s*\]`)
	// Lightspan educational serials use a variable-length numeric suffix.
	educationalSerialPattern = regexp.MustCompile(`(?i)\[\s*(LSP-\d+(?:-\d+)?)\s*\]`)
	versionPattern           = regexp.MustCompile(`(?i)\[\s*(v\d+(?:\.\d+)*)\s*\]`)
	trackTokenPattern        = regexp.MustCompile(`(?i)\(\s*track\s+(\d+)\s*\)`)
	parentheticalPattern     = regexp.MustCompile(`\(([^)]*)\)`)
	whitespacePattern        = regexp.MustCompile(`\s+`)
)

// regionAliases normalizes shorthand region tokens to the canonical form.
var regionAliases = map[string]string{
	"US": "USA",
	"EU": "Europe",
	"JP": "Japan",
}

// regionWhitelist is the fixed set of recognized region tokens.
var regionWhitelist = map[string]string{
	"USA":     "USA",
	"EUROPE":  "Europe",
	"JAPAN":   "Japan",
	"WORLD":   "World",
	"GERMANY": "Germany",
	"FRANCE":  "France",
	"SPAIN":   "Spain",
	"ITALY":   "Italy",
	"KOREA":   "Korea",
	"ASIA":    "Asia",
}

// NormalizeRegion resolves a raw region token (including US/EU/JP aliases) to
// its canonical form. The second return is false for unrecognized tokens.
func NormalizeRegion(token string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if alias, ok := regionAliases[upper]; ok {
		return alias, true
	}
	if canonical, ok := regionWhitelist[upper]; ok {
		return canonical, true
	}
	return "", false
}

// Parser turns filenames into descriptors, delegating content categorization
// to the injected classifier.
type Parser struct {
	classifier *classify.Classifier
}

// NewParser constructs a parser. A nil classifier falls back to the stock
// vocabulary tables.
func NewParser(classifier *classify.Classifier) *Parser {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Parser{classifier: classifier}
}

// Parse resolves the filename at path into a descriptor. Parsing never
// fails; gaps in the metadata surface as warnings on the result.
func (p *Parser) Parse(path string) *Descriptor {
	d := &Descriptor{Path: path, Format: formatForExt(filepath.Ext(path))}

	stem := filepath.Base(path)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	stem = p.extractSerial(stem, d)
	stem = extractVersion(stem, d)
	stem = extractDiscToken(stem, d)
	stem = extractTrackToken(stem, d)
	stem = extractRegion(stem, d)

	d.Title = collapseWhitespace(stem)

	if d.Serial == "" {
		d.Warn(WarnSerialNotFound)
	}
	if d.TrackNumber >= 2 {
		// Only the first track of a multi-track image carries data; later
		// tracks are audio and must never be treated as independent discs.
		d.AudioTrack = true
		d.Warn(WarnAudioTrack)
	}

	d.Content = p.classifier.Classify(d.Title, d.Serial)
	if d.Content == classify.Educational && classify.IsEducationalSerial(d.Serial) {
		d.Warn(WarnEducational)
	}

	return d
}

func (p *Parser) extractSerial(stem string, d *Descriptor) string {
	if m := serialPattern.FindStringSubmatch(stem); m != nil {
		d.Serial = strings.ToUpper(m[1])
		return strings.Replace(stem, m[0], " ", 1)
	}
	if m := educationalSerialPattern.FindStringSubmatch(stem); m != nil {
		d.Serial = strings.ToUpper(m[1])
		return strings.Replace(stem, m[0], " ", 1)
	}
	return stem
}

func extractVersion(stem string, d *Descriptor) string {
	m := versionPattern.FindStringSubmatch(stem)
	if m == nil {
		return stem
	}
	d.Version = m[1]
	return strings.Replace(stem, m[0], " ", 1)
}

func extractDiscToken(stem string, d *Descriptor) string {
	m := discTokenPattern.FindStringSubmatch(stem)
	if m == nil {
		return stem
	}
	d.DiscNumber, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		d.DiscCount, _ = strconv.Atoi(m[2])
	}
	return strings.Replace(stem, m[0], " ", 1)
}

func extractTrackToken(stem string, d *Descriptor) string {
	m := trackTokenPattern.FindStringSubmatch(stem)
	if m == nil {
		return stem
	}
	d.TrackNumber, _ = strconv.Atoi(m[1])
	return strings.Replace(stem, m[0], " ", 1)
}

func extractRegion(stem string, d *Descriptor) string {
	for _, m := range parentheticalPattern.FindAllStringSubmatch(stem, -1) {
		canonical, ok := NormalizeRegion(m[1])
		if !ok {
			continue
		}
		if d.Region == "" {
			d.Region = canonical
		}
		if d.Region == canonical {
			// Strip every occurrence of the detected region so duplicated
			// tokens collapse to one segment in the canonical name.
			stem = strings.ReplaceAll(stem, m[0], " ")
		}
	}
	return stem
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

func formatForExt(ext string) Format {
	if strings.EqualFold(ext, ".chd") {
		return FormatContainer
	}
	return FormatBinCue
}
