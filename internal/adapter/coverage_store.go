package adapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// CoverageStore reads and disposes of the JSONL coverage side files that
// test-file workers append to. Appends are line-atomic but otherwise
// uncoordinated, so a file may hold any number of records in any order.
type CoverageStore interface {
	// ReadRecords returns every line that parses as a coverage record.
	// Missing, unreadable, or empty files yield nil; so does a file with
	// no valid JSON line. A corrupt line is logged and skipped without
	// discarding the rest of the file.
	ReadRecords(ctx context.Context, path m.Path) []m.CoverageLineRecord

	// Cleanup deletes the file best-effort; failures are swallowed.
	Cleanup(ctx context.Context, path m.Path)
}

// LocalCoverageStore reads coverage files from the local filesystem.
type LocalCoverageStore struct{}

// NewLocalCoverageStore constructs a LocalCoverageStore.
func NewLocalCoverageStore() *LocalCoverageStore {
	return &LocalCoverageStore{}
}

// ReadRecords implements CoverageStore.
func (s *LocalCoverageStore) ReadRecords(ctx context.Context, path m.Path) []m.CoverageLineRecord {
	if err := ctx.Err(); err != nil {
		return nil
	}

	content, err := os.ReadFile(string(path))
	if err != nil {
		slog.Warn("Coverage file not readable", "path", path, "error", err)
		return nil
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		slog.Debug("Coverage file empty", "path", path)
		return nil
	}

	var records []m.CoverageLineRecord

	for _, line := range strings.Split(trimmed, "\n") {
		if len(line) == 0 {
			continue
		}

		var record m.CoverageLineRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			slog.Warn("Skipping corrupt coverage record", "path", path, "error", err)
			continue
		}

		records = append(records, record)
	}

	return records
}

// Cleanup implements CoverageStore.
func (s *LocalCoverageStore) Cleanup(ctx context.Context, path m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	if err := os.Remove(string(path)); err != nil {
		slog.Debug("Coverage file cleanup failed", "path", path, "error", err)
	}
}
