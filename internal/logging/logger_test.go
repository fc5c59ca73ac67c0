package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("planning rename", String("title", "Tomba!"), Int("operations", 3))

	out := buf.String()
	if !strings.Contains(out, "planning rename") {
		t.Errorf("message missing from output %q", out)
	}
	if !strings.Contains(out, "title=Tomba!") || !strings.Contains(out, "operations=3") {
		t.Errorf("attrs missing from output %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("scan complete", Int("discs", 12))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "scan complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["discs"] != float64(12) {
		t.Errorf("discs = %v", record["discs"])
	}
}

func TestNewAutoFallsBackToJSON(t *testing.T) {
	// A bytes.Buffer is not a terminal, so auto selects JSON.
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("auto format on non-terminal should be JSON, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("ignored")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "ignored") {
		t.Error("info record leaked through warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn record missing")
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	NewComponentLogger(logger, "renamer").Info("executing plan")
	if !strings.Contains(buf.String(), "component=renamer") {
		t.Errorf("component attr missing: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info("discarded", Error(nil))
}
