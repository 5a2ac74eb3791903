package execution

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
)

// Command is an external process invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the current environment
	Env []string
}

// String returns the command line as it would be typed
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a finished process
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands
type Runner interface {
	// Run executes cmd. A non-zero exit returns the populated Result together
	// with an ErrCommandFailed error.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger zerolog.Logger
	stream io.Writer
}

// NewExecRunner creates a runner. When stream is not nil, process output is
// copied to it as it is produced.
func NewExecRunner(stream io.Writer) *ExecRunner {
	return &ExecRunner{
		logger: logging.GetLogger("execution"),
		stream: stream,
	}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Name == "" {
		return Result{ExitCode: -1}, errors.New(errors.ErrInvalidInput, "command name is required")
	}

	logging.LogCommand(r.logger, cmd.Name, cmd.Args, cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		if _, err := os.Stat(cmd.Dir); err != nil {
			return Result{ExitCode: -1}, errors.Wrapf(err, errors.ErrFileAccess,
				"working directory does not exist: %s", cmd.Dir)
		}
		c.Dir = cmd.Dir
	}
	c.Env = append(os.Environ(), cmd.Env...)

	var stdout, stderr bytes.Buffer
	if r.stream != nil {
		c.Stdout = io.MultiWriter(&stdout, r.stream)
		c.Stderr = io.MultiWriter(&stderr, r.stream)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	result := Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		r.logger.Debug().
			Err(err).
			Str("command", cmd.String()).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command failed")
		return result, errors.Wrapf(err, errors.ErrCommandFailed, "command failed: %s", cmd.String()).
			WithDetail("exitCode", result.ExitCode).
			WithDetail("stderr", strings.TrimSpace(result.Stderr))
	}

	r.logger.Trace().
		Str("command", cmd.String()).
		Str("stdout", result.Stdout).
		Msg("Command succeeded")
	return result, nil
}
