package adapter

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

//go:embed templates/preload.js
var preloadScript []byte

// PreloadGenerator materializes the bootstrap script bun loads before any
// test file. The script installs the mutant-coverage hooks and performs the
// sync-server handshake inside the child process.
type PreloadGenerator interface {
	// Materialize writes the script to a temp file and returns its path.
	// Repeated calls reuse the same file.
	Materialize(ctx context.Context) (m.Path, error)

	// Dispose removes the materialized file; idempotent and best-effort.
	Dispose(ctx context.Context)
}

// FilePreloadGenerator writes the embedded script into the OS temp dir.
type FilePreloadGenerator struct {
	mu   sync.Mutex
	path m.Path
}

// NewFilePreloadGenerator constructs a FilePreloadGenerator.
func NewFilePreloadGenerator() *FilePreloadGenerator {
	return &FilePreloadGenerator{}
}

// Materialize implements PreloadGenerator.
func (g *FilePreloadGenerator) Materialize(ctx context.Context) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.path != "" {
		return g.path, nil
	}

	file, err := os.CreateTemp("", "stryker-bun-preload-*.js")
	if err != nil {
		return "", fmt.Errorf("failed to create preload script: %w", err)
	}

	if _, err := file.Write(preloadScript); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())

		return "", fmt.Errorf("failed to write preload script: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("failed to close preload script: %w", err)
	}

	g.path = m.Path(file.Name())
	slog.Debug("Materialized preload script", "path", g.path)

	return g.path, nil
}

// Dispose implements PreloadGenerator.
func (g *FilePreloadGenerator) Dispose(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.path == "" {
		return
	}

	if err := os.Remove(string(g.path)); err != nil {
		slog.Debug("Preload script cleanup failed", "path", g.path, "error", err)
	}

	g.path = ""
}
