package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"execmany/internal/logging"
)

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Entry describes one staged file.
type Entry struct {
	Collection string
	Name       string
	Path       string
	ModTime    time.Time
	Size       int64
	JobID      int64
}

// List returns every staged file below collectionsDir, grouped by collection.
func List(collectionsDir string) ([]Entry, error) {
	collectionsDir = strings.TrimSpace(collectionsDir)
	if collectionsDir == "" {
		return nil, nil
	}
	collections, err := os.ReadDir(collectionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, collection := range collections {
		if !collection.IsDir() {
			continue
		}
		dir := filepath.Join(collectionsDir, collection.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			info, err := file.Info()
			if err != nil {
				continue
			}
			entries = append(entries, Entry{
				Collection: collection.Name(),
				Name:       file.Name(),
				Path:       filepath.Join(dir, file.Name()),
				ModTime:    info.ModTime(),
				Size:       info.Size(),
				JobID:      JobIDFromName(file.Name()),
			})
		}
	}
	return entries, nil
}

// JobIDFromName extracts the "<job id>-" prefix execution jobs put on staged
// file names. Returns 0 when the name carries no such prefix.
func JobIDFromName(name string) int64 {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// CleanStale removes staged files older than maxAge. Files whose job id is in
// inFlight are kept regardless of age.
func CleanStale(ctx context.Context, collectionsDir string, maxAge time.Duration, inFlight map[int64]struct{}, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	entries, err := List(collectionsDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: collectionsDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: ctx.Err()})
			return result
		}
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		if _, active := inFlight[entry.JobID]; active && entry.JobID != 0 {
			continue
		}
		if err := os.RemoveAll(entry.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staged file",
					logging.String("path", entry.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check workspace_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		if logger != nil {
			logger.Info("removed stale staged file",
				logging.String("path", entry.Path),
				logging.String("collection", entry.Collection),
				logging.Duration("age", time.Since(entry.ModTime)),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}
	return result
}
