package snapshot

import (
	"GraphSpectra/internal/heuristics/statistic"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestStore_ListAndLoad(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)
	if _, err := w.Write(sampleCollector(0), "2026-01-01_00-00-00"); err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	if _, err := w.Write(sampleCollector(2), "2026-01-01_00-10-00"); err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}

	// An incomplete snapshot directory has no summary and is ignored.
	if err := os.MkdirAll(filepath.Join(root, "2026-01-01_00-20-00"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	store, err := NewStore(root, statistic.DefaultParameters(), 4)
	if err != nil {
		t.Fatalf("NewStore() returned an error: %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List() returned an error: %v", err)
	}
	if want := []string{"2026-01-01_00-00-00", "2026-01-01_00-10-00"}; !slices.Equal(names, want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}

	latest, name, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest() returned an error: %v", err)
	}
	if name != "2026-01-01_00-10-00" {
		t.Errorf("Expected latest 2026-01-01_00-10-00, got %s", name)
	}
	if !sampleCollector(2).Equal(latest) {
		t.Errorf("Latest collector differs from the written one")
	}

	again, err := store.Load(name)
	if err != nil {
		t.Fatalf("Load() returned an error: %v", err)
	}
	if again != latest {
		t.Errorf("Expected the cached collector to be returned")
	}

	summary, err := store.Summary("2026-01-01_00-00-00")
	if err != nil {
		t.Fatalf("Summary() returned an error: %v", err)
	}
	if summary.LiveNodes != 2 {
		t.Errorf("Expected 2 live nodes, got %d", summary.LiveNodes)
	}
}

func TestStore_Empty(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "missing"), statistic.DefaultParameters(), 1)
	if err != nil {
		t.Fatalf("NewStore() returned an error: %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List() returned an error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected no snapshots, got %v", names)
	}
	if _, _, err := store.LoadLatest(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot from LoadLatest, got %v", err)
	}
	if _, err := store.Summary("2026-01-01_00-00-00"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot from Summary, got %v", err)
	}
}

func TestNewStore_InvalidParameters(t *testing.T) {
	_, err := NewStore(t.TempDir(), statistic.Parameters{}, 1)
	if !errors.Is(err, statistic.ErrInvalidParameters) {
		t.Fatalf("Expected ErrInvalidParameters, got %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %s", timeout)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcher_ReloadsNewSnapshots(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root, statistic.DefaultParameters(), 4)
	if err != nil {
		t.Fatalf("NewStore() returned an error: %v", err)
	}
	if _, err := NewWriter(root).Write(sampleCollector(0), "2026-01-01_00-00-00"); err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}

	watcher, err := NewWatcher(store)
	if err != nil {
		t.Fatalf("NewWatcher() returned an error: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	if watcher.Current() == nil {
		t.Fatalf("Expected the existing snapshot to be loaded on start")
	}
	if got := watcher.Timestamp(); got != "2026-01-01_00-00-00" {
		t.Errorf("Expected 2026-01-01_00-00-00, got %s", got)
	}

	if _, err := NewWriter(root).Write(sampleCollector(1), "2026-01-01_00-05-00"); err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	waitFor(t, 5*time.Second, func() bool { return watcher.Timestamp() == "2026-01-01_00-05-00" })
	if !sampleCollector(1).Equal(watcher.Current()) {
		t.Errorf("Watcher serves a different collector than the newest snapshot")
	}

	// A second snapshot within the same second must replace the first.
	if _, err := NewWriter(root).Write(sampleCollector(2), "2026-01-01_00-05-00"); err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	waitFor(t, 5*time.Second, func() bool { return watcher.Timestamp() == "2026-01-01_00-05-00.001" })
	if !sampleCollector(2).Equal(watcher.Current()) {
		t.Errorf("Watcher kept serving the stale collector")
	}
}

func TestWatcher_NoSnapshotYet(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "fresh"), statistic.DefaultParameters(), 1)
	if err != nil {
		t.Fatalf("NewStore() returned an error: %v", err)
	}
	watcher, err := NewWatcher(store)
	if err != nil {
		t.Fatalf("NewWatcher() returned an error: %v", err)
	}
	watcher.Reload()
	if watcher.Current() != nil || watcher.Timestamp() != "" {
		t.Errorf("Expected nothing loaded, got %q", watcher.Timestamp())
	}
}
