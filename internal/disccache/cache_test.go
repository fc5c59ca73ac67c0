package disccache

import (
	"context"
	"path/filepath"
	"testing"

	"retroforge/internal/disc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "discs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	d := &disc.Descriptor{
		Path:   "/library/Spyro the Dragon (USA) [SCUS-94228].cue",
		Title:  "Spyro the Dragon",
		Region: "USA",
		Serial: "SCUS-94228",
		Format: disc.FormatBinCue,
	}
	if err := store.Put(ctx, d, 1024, 111); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Lookup(ctx, d.Path, 1024, 111)
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if got.Title != d.Title || got.Serial != d.Serial || got.Region != d.Region {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLookupMiss(t *testing.T) {
	store := openTestStore(t)
	if _, ok, err := store.Lookup(context.Background(), "/nope.cue", 1, 1); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
}

func TestLookupStaleOnSizeOrMtimeChange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	d := &disc.Descriptor{Path: "/library/game.cue", Title: "Game"}
	if err := store.Put(ctx, d, 100, 200); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := store.Lookup(ctx, d.Path, 101, 200); ok {
		t.Error("size change should invalidate entry")
	}
	if _, ok, _ := store.Lookup(ctx, d.Path, 100, 201); ok {
		t.Error("mtime change should invalidate entry")
	}
	if _, ok, _ := store.Lookup(ctx, d.Path, 100, 200); !ok {
		t.Error("unchanged entry should hit")
	}
}

func TestPutOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	d := &disc.Descriptor{Path: "/library/game.cue", Title: "Old"}
	if err := store.Put(ctx, d, 1, 1); err != nil {
		t.Fatal(err)
	}
	d.Title = "New"
	if err := store.Put(ctx, d, 2, 2); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Lookup(ctx, d.Path, 2, 2)
	if err != nil || !ok {
		t.Fatalf("Lookup after overwrite: ok=%v err=%v", ok, err)
	}
	if got.Title != "New" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, path := range []string{"/a.cue", "/b.cue", "/c.cue"} {
		if err := store.Put(ctx, &disc.Descriptor{Path: path}, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Prune(ctx, map[string]struct{}{"/b.cue": {}}); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if _, ok, _ := store.Lookup(ctx, "/a.cue", 1, 1); ok {
		t.Error("pruned entry /a.cue still present")
	}
	if _, ok, _ := store.Lookup(ctx, "/b.cue", 1, 1); !ok {
		t.Error("kept entry /b.cue missing")
	}
}
