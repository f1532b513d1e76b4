package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSeedWatcherDetectsWrite(t *testing.T) {
	tmpDir := t.TempDir()
	seedFile := filepath.Join(tmpDir, "seed.js")
	if err := os.WriteFile(seedFile, []byte("initial"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan string, 1)
	sw, err := WatchSeed(seedFile, func(source string) {
		changed <- source
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	sw.SetDebounce(50 * time.Millisecond)
	defer sw.Close()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(seedFile, []byte("function create() {}"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case source := <-changed:
		if source != "function create() {}" {
			t.Errorf("expected new seed contents, got %q", source)
		}
	case <-time.After(3 * time.Second):
		t.Error("timeout waiting for seed change notification")
	}
}

func TestSeedWatcherDetectsRenameReplace(t *testing.T) {
	tmpDir := t.TempDir()
	seedFile := filepath.Join(tmpDir, "seed.js")
	if err := os.WriteFile(seedFile, []byte("initial"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan string, 1)
	sw, err := WatchSeed(seedFile, func(source string) {
		changed <- source
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	sw.SetDebounce(50 * time.Millisecond)
	defer sw.Close()

	// Editors replace files by writing a temp file and renaming it over
	// the target.
	time.Sleep(100 * time.Millisecond)
	tmpFile := filepath.Join(tmpDir, "seed.js.tmp")
	if err := os.WriteFile(tmpFile, []byte("replaced"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Rename(tmpFile, seedFile); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case source := <-changed:
		if source != "replaced" {
			t.Errorf("expected replaced contents, got %q", source)
		}
	case <-time.After(3 * time.Second):
		t.Error("timeout waiting for rename notification")
	}
}

func TestSeedWatcherIgnoresSiblings(t *testing.T) {
	tmpDir := t.TempDir()
	seedFile := filepath.Join(tmpDir, "seed.js")
	if err := os.WriteFile(seedFile, []byte("initial"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan string, 1)
	sw, err := WatchSeed(seedFile, func(source string) {
		changed <- source
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	sw.SetDebounce(50 * time.Millisecond)
	defer sw.Close()

	time.Sleep(100 * time.Millisecond)
	sibling := filepath.Join(tmpDir, "other.js")
	if err := os.WriteFile(sibling, []byte("unrelated"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-changed:
		t.Error("should not trigger for sibling files")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestSeedWatcherClose(t *testing.T) {
	tmpDir := t.TempDir()
	seedFile := filepath.Join(tmpDir, "seed.js")
	if err := os.WriteFile(seedFile, []byte("initial"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sw, err := WatchSeed(seedFile, func(string) {}, zerolog.Nop())
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}

	if err := sw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sw.Close(); err != nil {
		t.Errorf("expected idempotent close, got %v", err)
	}
}
