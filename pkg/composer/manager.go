package composer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/canastawiki/canasta-modules/pkg/logging"
)

// Manager is the dependency manager the installer talks to
type Manager interface {
	// Require installs a "name[:version]" package
	Require(ctx context.Context, pkg string) error
	// Update runs the unified update pass and returns the process exit code
	Update(ctx context.Context) (int, error)
}

// Composer runs the composer binary against a MediaWiki root
type Composer struct {
	runner  execution.Runner
	binary  string
	workDir string
	logger  zerolog.Logger
}

// New creates a Composer operating on workDir
func New(runner execution.Runner, binary, workDir string) *Composer {
	if binary == "" {
		binary = "composer"
	}
	return &Composer{
		runner:  runner,
		binary:  binary,
		workDir: workDir,
		logger:  logging.GetLogger("composer"),
	}
}

// Require implements Manager
func (c *Composer) Require(ctx context.Context, pkg string) error {
	c.logger.Info().Str("package", pkg).Msg("Requiring composer package")
	_, err := c.runner.Run(ctx, execution.Command{
		Name: c.binary,
		Args: []string{"require", pkg, "--working-dir=" + c.workDir, "--no-interaction"},
	})
	return err
}

// Update implements Manager
func (c *Composer) Update(ctx context.Context) (int, error) {
	res, err := c.runner.Run(ctx, execution.Command{
		Name: c.binary,
		Args: []string{"update", "--working-dir=" + c.workDir, "--no-dev", "--no-interaction"},
	})
	return res.ExitCode, err
}
