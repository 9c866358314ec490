package model

// ProcessOutcome captures how one bun test invocation terminated.
// Exactly one terminal state is reached: normal exit, forced-kill timeout,
// or spawn error (ExitCode nil, TimedOut false, error text in Stderr).
type ProcessOutcome struct {
	Stdout string
	Stderr string

	// ExitCode is nil when the process was killed by the timeout or when
	// it could not be spawned at all. A timed-out process never reports a
	// real exit code, even if the kill signal produced one.
	ExitCode *int

	TimedOut bool
}

// ExitedZero reports whether the process exited normally with code 0.
func (o ProcessOutcome) ExitedZero() bool {
	return o.ExitCode != nil && *o.ExitCode == 0
}
