package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// ReportStore persists dry-run reports so later mutant scheduling (and
// humans) can inspect what the baseline run discovered.
type ReportStore interface {
	SaveDryRun(ctx context.Context, dir m.Path, report m.DryRunReport) (m.Path, error)
	LoadDryRun(ctx context.Context, path m.Path) (m.DryRunReport, error)
}

// YAMLReportStore writes reports as YAML files under a reports directory.
type YAMLReportStore struct{}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveDryRun implements ReportStore. The file is named after the run id.
func (s *YAMLReportStore) SaveDryRun(ctx context.Context, dir m.Path, report m.DryRunReport) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	content, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(string(dir), "dry-run-"+report.RunID+".yaml")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return m.Path(path), nil
}

// LoadDryRun implements ReportStore.
func (s *YAMLReportStore) LoadDryRun(ctx context.Context, path m.Path) (m.DryRunReport, error) {
	if err := ctx.Err(); err != nil {
		return m.DryRunReport{}, err
	}

	content, err := os.ReadFile(string(path))
	if err != nil {
		return m.DryRunReport{}, fmt.Errorf("failed to read report: %w", err)
	}

	var report m.DryRunReport
	if err := yaml.Unmarshal(content, &report); err != nil {
		return m.DryRunReport{}, fmt.Errorf("failed to decode report: %w", err)
	}

	return report, nil
}
