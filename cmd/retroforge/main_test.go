package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"retroforge/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	testsupport.WriteText(t, path, fmt.Sprintf(
		"[paths]\ncache_path = %q\nlog_dir = %q\n",
		filepath.Join(dir, "cache.db"), filepath.Join(dir, "logs")))
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if !testsupport.Exists(target) {
		t.Fatal("sample config not written")
	}
	if _, err := runCLI(t, "config", "init", "-p", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := runCLI(t, "config", "init", "-p", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, "config", "show", "-c", cfgPath)
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "chdman") {
		t.Errorf("expected default tool binary in output:\n%s", out)
	}
	if !strings.Contains(out, "content.mode") {
		t.Errorf("expected content.mode row:\n%s", out)
	}
}

func TestScanCommandSummarizesLibrary(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228].chd"), 16)

	out, err := runCLI(t, "scan", root, "-c", cfgPath)
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Spyro the Dragon") {
		t.Errorf("title missing from output:\n%s", out)
	}
	if !strings.Contains(out, "1 title") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestScanCommandRequiresRoot(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "scan", "-c", cfgPath); err == nil {
		t.Fatal("scan without a path or configured root must fail")
	}
}

func TestRenameDryRunLeavesFilesAlone(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	original := filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228] (Disc 1 of 1).chd")
	testsupport.WriteFile(t, original, 16)

	out, err := runCLI(t, "rename", root, "-c", cfgPath)
	if err != nil {
		t.Fatalf("rename: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Errorf("expected dry-run notice:\n%s", out)
	}
	if !testsupport.Exists(original) {
		t.Error("dry run must not modify files")
	}
}

func TestRenameApplyExecutesPlan(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228] (Disc 1 of 1).chd"), 16)

	out, err := runCLI(t, "rename", root, "-c", cfgPath, "--apply")
	if err != nil {
		t.Fatalf("rename --apply: %v\n%s", err, out)
	}
	if !testsupport.Exists(filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228].chd")) {
		t.Errorf("canonical name not applied:\n%s", out)
	}
}

func TestConvertDryRunPrintsPlan(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	testsupport.WriteText(t, filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228].cue"),
		"FILE \"Spyro the Dragon (USA) [SCUS-94228].bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n")
	testsupport.WriteFile(t, filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228].bin"), 16)

	out, err := runCLI(t, "convert", root, "-c", cfgPath)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Spyro the Dragon (USA) [SCUS-94228].chd") {
		t.Errorf("planned destination missing:\n%s", out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Errorf("expected dry-run notice:\n%s", out)
	}
	if testsupport.Exists(filepath.Join(root, "Spyro the Dragon (USA) [SCUS-94228].chd")) {
		t.Error("dry run must not convert")
	}
}

func TestMergeDryRunPrintsPlan(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	testsupport.WriteCueWithBins(t, root, "Tomba! (USA) [SCUS-94236]", []testsupport.TrackSpec{
		{Name: "Tomba! (USA) [SCUS-94236] (Track 01).bin", Mode: "MODE2/2352", Size: 64},
		{Name: "Tomba! (USA) [SCUS-94236] (Track 02).bin", Mode: "AUDIO", Size: 32},
	})

	out, err := runCLI(t, "merge", root, "-c", cfgPath)
	if err != nil {
		t.Fatalf("merge: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Tomba! (USA) [SCUS-94236].cue") {
		t.Errorf("cue missing from plan:\n%s", out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Errorf("expected dry-run notice:\n%s", out)
	}
}

func TestPlaylistApplyWritesFile(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Final Fantasy VIII (USA) [SLUS-00892] (Disc 1).chd"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "Final Fantasy VIII (USA) [SLUS-00908] (Disc 2).chd"), 8)

	out, err := runCLI(t, "playlist", root, "-c", cfgPath, "--apply")
	if err != nil {
		t.Fatalf("playlist --apply: %v\n%s", err, out)
	}
	playlistPath := filepath.Join(root, "Final Fantasy VIII (USA).m3u")
	if !testsupport.Exists(playlistPath) {
		t.Fatalf("playlist not written:\n%s", out)
	}
	body := string(testsupport.ReadFile(t, playlistPath))
	if !strings.HasPrefix(body, "Final Fantasy VIII (USA) [SLUS-00892] (Disc 1).chd\n") {
		t.Errorf("playlist body = %q", body)
	}
}
