// Package controller provides output adapters for displaying runner results.
package controller

import (
	"context"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// UI defines how run results are presented to the terminal user.
// The runner's own logging never goes to stdout; everything printed here is
// deliberate command output.
type UI interface {
	DisplayDryRun(ctx context.Context, result m.DryRunResult, reportPath m.Path) error
	DisplayMutantRun(ctx context.Context, result m.MutantRunResult) error
}
