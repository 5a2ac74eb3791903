package execution

import (
	"context"
	"sync"

	"github.com/canastawiki/canasta-modules/pkg/errors"
)

// Recorder is a Runner that records invocations instead of running them.
// Respond, when set, decides the result of each call.
type Recorder struct {
	Respond func(cmd Command) Result

	mu    sync.Mutex
	calls []Command
}

// Run implements Runner
func (r *Recorder) Run(_ context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	var result Result
	if r.Respond != nil {
		result = r.Respond(cmd)
	}
	if result.ExitCode != 0 {
		return result, errors.Newf(errors.ErrCommandFailed, "command failed: %s", cmd.String()).
			WithDetail("exitCode", result.ExitCode)
	}
	return result, nil
}

// Calls returns the recorded invocations in order
func (r *Recorder) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.calls...)
}

// Lines returns the recorded invocations as command lines
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}
