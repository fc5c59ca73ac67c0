package classify

import (
	"regexp"
	"strings"
)

// ContentType is the category assigned to a disc.
type ContentType string

const (
	Mainline    ContentType = "mainline"
	Cheat       ContentType = "cheat"
	Educational ContentType = "educational"
	Demo        ContentType = "demo"
)

// Rule maps a lowercase title substring to a content category.
type Rule struct {
	Pattern string
	Type    ContentType
}

// Classifier evaluates content rules in order against a disc title, after
// first checking the serial override. The zero value classifies everything
// as Mainline; use Default for the stock tables.
type Classifier struct {
	serialOverride *regexp.Regexp
	overrideType   ContentType
	rules          []Rule
}

// lightspanSerialPattern matches the Lightspan educational serial family,
// which uses a variable-length numeric suffix rather than the usual five
// digits (e.g. LSP-906480, LSP-90148-2).
var lightspanSerialPattern = regexp.MustCompile(`(?i)^LSP-\d+(?:-\d+)?$`)

// DefaultRules returns the stock vocabulary tables in evaluation order:
// cheat/utility devices first, then educational lines, then demo discs.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "gameshark", Type: Cheat},
		{Pattern: "game shark", Type: Cheat},
		{Pattern: "xploder", Type: Cheat},
		{Pattern: "x-ploder", Type: Cheat},
		{Pattern: "action replay", Type: Cheat},
		{Pattern: "codebreaker", Type: Cheat},
		{Pattern: "code breaker", Type: Cheat},
		{Pattern: "cheat", Type: Cheat},
		{Pattern: "lightspan", Type: Educational},
		{Pattern: "adventures in learning", Type: Educational},
		{Pattern: "click start", Type: Educational},
		{Pattern: "leapfrog", Type: Educational},
		// Keyed on "(demo)" rather than bare "demo" so titles like
		// "Demolition Racer" stay mainline.
		{Pattern: "(demo)", Type: Demo},
		{Pattern: "demo disc", Type: Demo},
		{Pattern: "preview", Type: Demo},
		{Pattern: "sampler", Type: Demo},
	}
}

// New builds a classifier from the given rule table. Rules are evaluated in
// slice order; the Lightspan serial override always wins over the tables.
func New(rules []Rule) *Classifier {
	return &Classifier{
		serialOverride: lightspanSerialPattern,
		overrideType:   Educational,
		rules:          rules,
	}
}

// Default returns a classifier with the stock vocabulary tables.
func Default() *Classifier {
	return New(DefaultRules())
}

// Classify maps a title and optional serial to a content category.
// The serial override is evaluated before any title vocabulary, so a disc
// carrying a Lightspan serial is Educational even when its title contains
// cheat vocabulary.
func (c *Classifier) Classify(title, serial string) ContentType {
	if c.serialOverride != nil && serial != "" && c.serialOverride.MatchString(strings.TrimSpace(serial)) {
		return c.overrideType
	}
	lowered := strings.ToLower(title)
	for _, rule := range c.rules {
		if rule.Pattern == "" {
			continue
		}
		if strings.Contains(lowered, rule.Pattern) {
			return rule.Type
		}
	}
	return Mainline
}

// IsEducationalSerial reports whether serial belongs to the Lightspan family.
func IsEducationalSerial(serial string) bool {
	return serial != "" && lightspanSerialPattern.MatchString(strings.TrimSpace(serial))
}
