package classify

import "testing"

func TestClassify(t *testing.T) {
	classifier := Default()

	tests := []struct {
		name     string
		title    string
		serial   string
		expected ContentType
	}{
		{
			name:     "mainline title",
			title:    "Final Fantasy VIII",
			serial:   "SLUS-00892",
			expected: Mainline,
		},
		{
			name:     "gameshark disc",
			title:    "GameShark Version 4.0",
			expected: Cheat,
		},
		{
			name:     "spaced cheat vocabulary",
			title:    "Game Shark CDX",
			expected: Cheat,
		},
		{
			name:     "action replay",
			title:    "Action Replay Ultimate Cheats",
			expected: Cheat,
		},
		{
			name:     "code breaker",
			title:    "Code Breaker Version 3",
			expected: Cheat,
		},
		{
			name:     "lightspan vocabulary",
			title:    "Lightspan Adventures - K.C.'s Crafts",
			expected: Educational,
		},
		{
			name:     "educational vocabulary",
			title:    "Mona & Moki Adventures in Learning",
			expected: Educational,
		},
		{
			name:     "serial override beats cheat vocabulary",
			title:    "Cheat Codes Galore",
			serial:   "LSP-906480",
			expected: Educational,
		},
		{
			name:     "lightspan serial with segment suffix",
			title:    "Secret Paths in the Forest",
			serial:   "LSP-90148-2",
			expected: Educational,
		},
		{
			name:     "demo parenthetical",
			title:    "Gran Turismo (Demo)",
			expected: Demo,
		},
		{
			name:     "interactive sampler",
			title:    "Interactive CD Sampler Volume 4",
			expected: Demo,
		},
		{
			name:     "demolition racer stays mainline",
			title:    "Demolition Racer",
			expected: Mainline,
		},
		{
			name:     "empty title",
			title:    "",
			expected: Mainline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.title, tt.serial); got != tt.expected {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.title, tt.serial, got, tt.expected)
			}
		})
	}
}

func TestClassifyCustomRules(t *testing.T) {
	classifier := New([]Rule{{Pattern: "homebrew", Type: Demo}})
	if got := classifier.Classify("Homebrew Compilation", ""); got != Demo {
		t.Fatalf("custom rule not applied: got %v", got)
	}
	if got := classifier.Classify("GameShark", ""); got != Mainline {
		t.Fatalf("stock rules leaked into custom classifier: got %v", got)
	}
	// Serial override applies regardless of the rule table.
	if got := classifier.Classify("Anything", "LSP-12345"); got != Educational {
		t.Fatalf("serial override missing: got %v", got)
	}
}

func TestIsEducationalSerial(t *testing.T) {
	tests := []struct {
		serial   string
		expected bool
	}{
		{"LSP-906480", true},
		{"lsp-12345", true},
		{"LSP-90148-2", true},
		{"SLUS-00892", false},
		{"", false},
		{"LSP-", false},
	}
	for _, tt := range tests {
		if got := IsEducationalSerial(tt.serial); got != tt.expected {
			t.Errorf("IsEducationalSerial(%q) = %v, want %v", tt.serial, got, tt.expected)
		}
	}
}
