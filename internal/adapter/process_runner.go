package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// Environment variables the preload logic reads once at process start.
const (
	EnvActiveMutant = "__STRYKER_ACTIVE_MUTANT__"
	EnvCoverageFile = "__STRYKER_COVERAGE_FILE__"
	EnvSyncPort     = "__STRYKER_SYNC_PORT__"
)

// streamChunkBuffer bounds the per-stream chunk channel between the exec
// copier and the accumulating consumer.
const streamChunkBuffer = 64

var inspectorURLPattern = regexp.MustCompile(`ws://\S+`)

// InspectorURLCallback is invoked at most once, with the first debugger
// listening URL scanned from stderr.
type InspectorURLCallback func(url string)

// ProcessRunner spawns the bun test process and reports how it terminated.
// All failure modes fold into the outcome; callers distinguish them by the
// exit code and the timed-out flag, never by an error.
type ProcessRunner interface {
	Run(ctx context.Context, opts m.RunOptions) m.ProcessOutcome
}

// LocalProcessRunner runs bun via os/exec on the local machine.
type LocalProcessRunner struct {
	onInspectorURL InspectorURLCallback
}

// ProcessRunnerOption configures a LocalProcessRunner.
type ProcessRunnerOption func(*LocalProcessRunner)

// WithInspectorURLCallback registers the one-shot stderr URL callback.
func WithInspectorURLCallback(cb InspectorURLCallback) ProcessRunnerOption {
	return func(r *LocalProcessRunner) {
		r.onInspectorURL = cb
	}
}

// NewLocalProcessRunner constructs a LocalProcessRunner.
func NewLocalProcessRunner(options ...ProcessRunnerOption) *LocalProcessRunner {
	runner := &LocalProcessRunner{}
	for _, option := range options {
		option(runner)
	}

	return runner
}

// BuildArgs assembles the bun argument vector in a fixed order: inspector,
// preload, test-name-pattern, bail, no-coverage, concurrency, the
// randomization kill-switch, then passthrough arguments. The order is part
// of the contract so callers can verify the exact invocation.
func BuildArgs(opts m.RunOptions) []string {
	args := []string{"test"}

	if opts.InspectPort > 0 {
		args = append(args, fmt.Sprintf("--inspect=%d", opts.InspectPort))
	}

	if opts.PreloadPath != "" {
		args = append(args, "--preload", string(opts.PreloadPath))
	}

	if opts.TestNamePattern != "" {
		args = append(args, "--test-name-pattern", opts.TestNamePattern)
	}

	if opts.Bail {
		args = append(args, "--bail")
	}

	args = append(args, "--no-coverage")

	if opts.Sequential {
		args = append(args, "--concurrency=1")
	}

	// A dry run's test ordering must match the mutant runs that correlate
	// against it, so randomization is always disabled.
	args = append(args, "--no-randomize")

	return append(args, opts.Args...)
}

// BuildEnv overlays the caller environment and the side-channel variables on
// the inherited environment. Optional variables are only set when present;
// an unset option never leaks as a literal "undefined"-style value.
func BuildEnv(opts m.RunOptions) []string {
	env := os.Environ()

	keys := make([]string, 0, len(opts.Env))
	for key := range opts.Env {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		env = append(env, key+"="+opts.Env[key])
	}

	if opts.ActiveMutant != "" {
		env = append(env, EnvActiveMutant+"="+opts.ActiveMutant)
	}

	if opts.CoverageFile != "" {
		env = append(env, EnvCoverageFile+"="+string(opts.CoverageFile))
	}

	if opts.SyncPort > 0 {
		env = append(env, fmt.Sprintf("%s=%d", EnvSyncPort, opts.SyncPort))
	}

	return env
}

// Run spawns the process and blocks until it exits, times out, or fails to
// spawn. Stdout and stderr are accumulated in memory and never forwarded to
// the parent's streams.
func (r *LocalProcessRunner) Run(ctx context.Context, opts m.RunOptions) m.ProcessOutcome {
	if err := ctx.Err(); err != nil {
		return m.ProcessOutcome{Stderr: err.Error()}
	}

	cmd := exec.Command(opts.Executable, BuildArgs(opts)...)
	cmd.Env = BuildEnv(opts)

	stdoutChunks := make(chan []byte, streamChunkBuffer)
	stderrChunks := make(chan []byte, streamChunkBuffer)
	cmd.Stdout = newChunkWriter(stdoutChunks)
	cmd.Stderr = newChunkWriter(stderrChunks)

	var stdout, stderr bytes.Buffer

	scanInspector := r.onInspectorURL != nil && opts.InspectPort > 0

	group := new(errgroup.Group)
	group.Go(func() error {
		for chunk := range stdoutChunks {
			stdout.Write(chunk)
		}

		return nil
	})
	group.Go(func() error {
		matched := !scanInspector

		for chunk := range stderrChunks {
			stderr.Write(chunk)

			if matched {
				continue
			}

			if url := inspectorURLPattern.Find(stderr.Bytes()); url != nil {
				matched = true

				r.onInspectorURL(string(url))
			}
		}

		return nil
	})

	drain := func() {
		close(stdoutChunks)
		close(stderrChunks)
		_ = group.Wait()
	}

	if err := cmd.Start(); err != nil {
		drain()
		slog.Error("Failed to spawn bun process", "executable", opts.Executable, "error", err)

		return m.ProcessOutcome{
			Stdout: stdout.String(),
			Stderr: appendErrorText(stderr.String(), err),
		}
	}

	var killed atomic.Bool

	timer := time.AfterFunc(opts.Timeout, func() {
		killed.Store(true)

		if killErr := cmd.Process.Kill(); killErr != nil {
			slog.Debug("Kill after timeout failed", "error", killErr)
		}
	})

	waitErr := cmd.Wait()

	timer.Stop()
	drain()

	outcome := m.ProcessOutcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if killed.Load() {
		// The kill signal may still surface an exit code (e.g. 143); a
		// timed-out process must never report one.
		outcome.TimedOut = true
		slog.Warn("Process killed by timeout", "timeout", opts.Timeout)

		return outcome
	}

	switch err := waitErr.(type) {
	case nil:
		code := 0
		outcome.ExitCode = &code
	case *exec.ExitError:
		code := err.ExitCode()
		outcome.ExitCode = &code
	default:
		outcome.Stderr = appendErrorText(outcome.Stderr, waitErr)
		slog.Error("Process wait failed", "error", waitErr)
	}

	return outcome
}

func appendErrorText(stderr string, err error) string {
	if stderr == "" {
		return err.Error()
	}

	return stderr + "\n" + err.Error()
}

// chunkWriter forwards each write as an owned copy onto a bounded channel,
// preserving chunk order for the single consumer on the other side.
type chunkWriter struct {
	chunks chan<- []byte
}

func newChunkWriter(chunks chan<- []byte) *chunkWriter {
	return &chunkWriter{chunks: chunks}
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	w.chunks <- chunk

	return len(p), nil
}
