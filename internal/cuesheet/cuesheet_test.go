package cuesheet

import (
	"strings"
	"testing"
)

const multiTrackCue = `REM COMMENT "dumped with redump settings"
FILE "Tomba! (USA) (Track 01).bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
FILE "Tomba! (USA) (Track 02).bin" BINARY
  TRACK 02 AUDIO
    PREGAP 00:02:00
    INDEX 01 00:00:00
`

func TestParseReaderMultiFile(t *testing.T) {
	sheet, err := ParseReader(strings.NewReader(multiTrackCue), "Tomba! (USA).cue")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if !sheet.MultiFile() {
		t.Fatal("expected multi-file sheet")
	}
	if got := sheet.BinFiles(); len(got) != 2 || got[0] != "Tomba! (USA) (Track 01).bin" || got[1] != "Tomba! (USA) (Track 02).bin" {
		t.Fatalf("BinFiles() = %v", got)
	}
	if len(sheet.Preamble) != 1 || !strings.HasPrefix(sheet.Preamble[0], "REM COMMENT") {
		t.Fatalf("preamble not preserved: %v", sheet.Preamble)
	}

	tracks := sheet.Tracks()
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Number != 1 || !tracks[0].IsData() || tracks[0].IsAudio() {
		t.Errorf("track 1 = %+v, want data track number 1", tracks[0])
	}
	if tracks[1].Number != 2 || !tracks[1].IsAudio() {
		t.Errorf("track 2 = %+v, want audio track number 2", tracks[1])
	}
	if len(tracks[1].Lines) != 3 {
		t.Errorf("track 2 kept %d lines, want TRACK + PREGAP + INDEX", len(tracks[1].Lines))
	}
}

func TestParseReaderNoFileDirective(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("REM EMPTY\n"), "broken.cue"); err == nil {
		t.Fatal("expected error for sheet without FILE directive")
	}
}

func TestRewriteChangesOnlyFileLine(t *testing.T) {
	sheet, err := ParseReader(strings.NewReader(multiTrackCue), "Tomba! (USA).cue")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	out := string(sheet.Rewrite("Tomba! (USA).bin"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	fileLines := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "FILE ") {
			fileLines++
			if line != `FILE "Tomba! (USA).bin" BINARY` {
				t.Errorf("unexpected FILE line %q", line)
			}
		}
	}
	if fileLines != 1 {
		t.Fatalf("rewritten sheet has %d FILE lines, want 1", fileLines)
	}

	// Every non-FILE line from the source must appear verbatim.
	for _, want := range []string{
		"  TRACK 01 MODE2/2352",
		"    INDEX 01 00:00:00",
		"  TRACK 02 AUDIO",
		"    PREGAP 00:02:00",
		`REM COMMENT "dumped with redump settings"`,
	} {
		if !strings.Contains(out, want+"\n") {
			t.Errorf("rewritten sheet missing verbatim line %q", want)
		}
	}
}

func TestRetarget(t *testing.T) {
	sheet, err := ParseReader(strings.NewReader(multiTrackCue), "Tomba! (USA).cue")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	out := string(sheet.Retarget(map[string]string{
		"Tomba! (USA) (Track 01).bin": "Tomba! (USA) [SCUS-94236] (Track 01).bin",
	}))
	if !strings.Contains(out, `FILE "Tomba! (USA) [SCUS-94236] (Track 01).bin" BINARY`) {
		t.Errorf("renamed file missing from output:\n%s", out)
	}
	if !strings.Contains(out, `FILE "Tomba! (USA) (Track 02).bin" BINARY`) {
		t.Errorf("unmapped file should keep its name:\n%s", out)
	}
}
