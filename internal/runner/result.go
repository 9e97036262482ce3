package runner

import "time"

// Result holds the output of a command execution.
type Result struct {
	RunID     string        // unique identifier for this run
	Argv      []string      // program and arguments as spawned
	ExitCode  int           // process exit code; -1 if terminated by a signal
	Stdout    []byte        // captured stdout (may be truncated)
	Stderr    []byte        // captured stderr (may be truncated)
	Truncated bool          // true if output exceeded the size cap
	StartedAt time.Time     // when the process was spawned
	Duration  time.Duration // wall time until exit
}

// Exited reports whether the process exited normally with a status code.
func (r *Result) Exited() bool {
	return r.ExitCode >= 0
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}
