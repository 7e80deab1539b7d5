package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"execmany/internal/logging"
)

func writeStaged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, nil, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldFiles(t *testing.T) {
	root := t.TempDir()
	oldFile := filepath.Join(root, "execute", "4-out.mp4")
	recentFile := filepath.Join(root, "execute", "5-out.mp4")
	activeFile := filepath.Join(root, "execute", "6-out.mp4")
	writeStaged(t, oldFile, 2*time.Hour)
	writeStaged(t, recentFile, 0)
	writeStaged(t, activeFile, 3*time.Hour)

	inFlight := map[int64]struct{}{6: {}}
	result := CleanStale(context.Background(), root, time.Hour, inFlight, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldFile {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old file should have been removed")
	}
	for _, keep := range []string{recentFile, activeFile} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should still exist", keep)
		}
	}
}

func TestCleanStaleStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeStaged(t, filepath.Join(root, "execute", "1-a"), 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := CleanStale(ctx, root, time.Hour, nil, logging.NewNop())
	if len(result.Removed) != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected cancellation error, got %+v", result)
	}
}

func TestListAndJobIDFromName(t *testing.T) {
	root := t.TempDir()
	writeStaged(t, filepath.Join(root, "execute", "12-props.properties"), 0)
	writeStaged(t, filepath.Join(root, "manual", "notes.txt"), 0)

	entries, err := List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if e := byName["12-props.properties"]; e.JobID != 12 || e.Collection != "execute" || e.Size != 4 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e := byName["notes.txt"]; e.JobID != 0 {
		t.Fatalf("expected no job id, got %+v", e)
	}
	if JobIDFromName("abc-1") != 0 || JobIDFromName("0-x") != 0 {
		t.Fatal("unexpected job id from malformed names")
	}
}
