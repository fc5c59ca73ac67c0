package binmerge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retroforge/internal/disc"
	"retroforge/internal/logging"
	"retroforge/internal/scanner"
	"retroforge/internal/testsupport"
)

func scanDiscs(t *testing.T, root string) []*disc.Descriptor {
	t.Helper()
	s := scanner.New(nil, nil, logging.NewNop())
	descs, err := s.Scan(context.Background(), root, scanner.Options{Recursive: true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return descs
}

func writeTwoTrackDisc(t *testing.T, root string) (cuePath string, data, audio []byte) {
	t.Helper()
	data = bytes.Repeat([]byte{0x11}, 2352)
	audio = bytes.Repeat([]byte{0x22}, 1176)
	testsupport.WriteText(t, filepath.Join(root, "Tomba! (USA) [SCUS-94236] (Track 01).bin"), string(data))
	testsupport.WriteText(t, filepath.Join(root, "Tomba! (USA) [SCUS-94236] (Track 02).bin"), string(audio))
	cuePath = testsupport.WriteText(t, filepath.Join(root, "Tomba! (USA) [SCUS-94236].cue"),
		"FILE \"Tomba! (USA) [SCUS-94236] (Track 01).bin\" BINARY\n"+
			"  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"+
			"FILE \"Tomba! (USA) [SCUS-94236] (Track 02).bin\" BINARY\n"+
			"  TRACK 02 AUDIO\n    INDEX 00 00:00:00\n    INDEX 01 00:02:00\n")
	return cuePath, data, audio
}

func TestBuildPlanSelectsMultiFileSheets(t *testing.T) {
	root := t.TempDir()
	writeTwoTrackDisc(t, root)
	testsupport.WriteText(t, filepath.Join(root, "Single (USA).cue"),
		"FILE \"Single (USA).bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n")
	testsupport.WriteFile(t, filepath.Join(root, "Single (USA).bin"), 64)

	plan, err := BuildPlan(scanDiscs(t, root))
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Operations) != 1 {
		t.Fatalf("operations = %v", plan.Operations)
	}
	op := plan.Operations[0]
	if len(op.Tracks) != 2 {
		t.Fatalf("tracks = %v", op.Tracks)
	}
	if op.Tracks[0].Audio || !op.Tracks[1].Audio {
		t.Errorf("audio flags wrong: %v", op.Tracks)
	}
	if op.TotalBytes != 2352+1176 {
		t.Errorf("TotalBytes = %d", op.TotalBytes)
	}
	if got := filepath.Base(op.DestBin); got != "Tomba! (USA) [SCUS-94236].bin" {
		t.Errorf("DestBin = %q", got)
	}
}

func TestBuildPlanSkipsMissingTracks(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, filepath.Join(root, "Broken (USA).cue"),
		"FILE \"a.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"+
			"FILE \"b.bin\" BINARY\n  TRACK 02 AUDIO\n    INDEX 01 00:00:00\n")
	testsupport.WriteFile(t, filepath.Join(root, "a.bin"), 8)

	plan, err := BuildPlan(scanDiscs(t, root))
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Empty() || len(plan.Skipped) != 1 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestMergeByteExactAndSheetRewrite(t *testing.T) {
	root := t.TempDir()
	cuePath, data, audio := writeTwoTrackDisc(t, root)
	originalSheet := string(testsupport.ReadFile(t, cuePath))

	plan, err := BuildPlan(scanDiscs(t, root))
	if err != nil {
		t.Fatal(err)
	}
	result := NewService(logging.NewNop()).Apply(plan, false)
	if !result.OK() {
		t.Fatalf("apply: %v", result.Errors)
	}

	merged := testsupport.ReadFile(t, filepath.Join(root, "Tomba! (USA) [SCUS-94236].bin"))
	if len(merged) != len(data)+len(audio) {
		t.Fatalf("merged length = %d, want %d", len(merged), len(data)+len(audio))
	}
	if !bytes.Equal(merged[:len(data)], data) || !bytes.Equal(merged[len(data):], audio) {
		t.Error("merged bytes are not the in-order concatenation of the tracks")
	}

	rewritten := string(testsupport.ReadFile(t, cuePath))
	if strings.Count(rewritten, "FILE ") != 1 {
		t.Errorf("rewritten sheet must hold one FILE line:\n%s", rewritten)
	}
	if !strings.Contains(rewritten, `FILE "Tomba! (USA) [SCUS-94236].bin" BINARY`) {
		t.Errorf("FILE line not retargeted:\n%s", rewritten)
	}
	// Track and index lines pass through byte for byte.
	for _, line := range strings.Split(originalSheet, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "TRACK") || strings.HasPrefix(trimmed, "INDEX") {
			if !strings.Contains(rewritten, line) {
				t.Errorf("line %q missing from rewritten sheet", line)
			}
		}
	}
	if !strings.Contains(rewritten, "TRACK 02 AUDIO") {
		t.Error("audio track lost")
	}

	// Sources retained without delete-sources.
	if !testsupport.Exists(filepath.Join(root, "Tomba! (USA) [SCUS-94236] (Track 01).bin")) {
		t.Error("source track deleted without delete-sources")
	}
}

func TestApplyDeleteSourcesCleansUpDirs(t *testing.T) {
	root := t.TempDir()
	trackDir := filepath.Join(root, "tracks")
	testsupport.WriteFile(t, filepath.Join(trackDir, "a.bin"), 100)
	testsupport.WriteFile(t, filepath.Join(trackDir, "b.bin"), 50)
	cuePath := testsupport.WriteText(t, filepath.Join(root, "Game (USA).cue"),
		"FILE \"tracks/a.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"+
			"FILE \"tracks/b.bin\" BINARY\n  TRACK 02 AUDIO\n    INDEX 01 00:00:00\n")

	plan, err := BuildPlan(scanDiscs(t, root))
	if err != nil {
		t.Fatal(err)
	}
	result := NewService(logging.NewNop()).Apply(plan, true)
	if !result.OK() {
		t.Fatalf("apply: %v", result.Errors)
	}
	if result.Deleted != 2 {
		t.Errorf("Deleted = %d", result.Deleted)
	}
	if testsupport.Exists(trackDir) {
		t.Error("emptied track directory must be removed")
	}
	if got := testsupport.ReadFile(t, cuePath); !strings.Contains(string(got), `FILE "Game (USA).bin" BINARY`) {
		t.Errorf("sheet = %s", got)
	}
	if !testsupport.Exists(filepath.Join(root, "Game (USA).bin")) {
		t.Error("merged binary missing")
	}
}

func TestMergeOverwritesStaleOutput(t *testing.T) {
	root := t.TempDir()
	writeTwoTrackDisc(t, root)
	// Stale output from an interrupted earlier merge, larger than the real
	// result.
	testsupport.WriteFile(t, filepath.Join(root, "Tomba! (USA) [SCUS-94236].bin"), 9000)
	plan, err := BuildPlan(scanDiscs(t, root))
	if err != nil {
		t.Fatal(err)
	}
	if err := NewService(logging.NewNop()).Merge(plan.Operations[0]); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(root, "Tomba! (USA) [SCUS-94236].bin"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 2352+1176 {
		t.Errorf("stale output not truncated: %d", info.Size())
	}
}
