package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/canastawiki/canasta-modules/pkg/composer"
	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/installer"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/manifest"
	"github.com/canastawiki/canasta-modules/pkg/sourcecontrol"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// installDeps lets tests swap the external tools for fakes
type installDeps struct {
	fs            types.FS
	sourceControl func(cfg *config.Config, runner execution.Runner) sourcecontrol.Provider
	composer      func(cfg *config.Config, runner execution.Runner) composer.Manager
	runner        func() execution.Runner
}

func defaultInstallDeps() installDeps {
	return installDeps{
		fs: filesystem.NewOS(),
		sourceControl: func(cfg *config.Config, runner execution.Runner) sourcecontrol.Provider {
			return sourcecontrol.NewGitProvider(runner, cfg.Tools.Git)
		},
		composer: func(cfg *config.Config, runner execution.Runner) composer.Manager {
			return composer.New(runner, cfg.Tools.Composer, cfg.MediaWiki.Home)
		},
		runner: func() execution.Runner {
			return execution.NewExecRunner(os.Stderr)
		},
	}
}

func newInstallCmd(opts *globalOptions, deps installDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "install <manifest>",
		Short: MsgInstallShort,
		Long:  MsgInstallLong,
		Example: `  # Install from the manifest baked into the image
  canasta-modules install /extensions-skins.yaml

  # Abort on the first failed clone or patch
  canasta-modules install --strict /extensions-skins.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.install")
			defer logging.LogOperationStart(logger, "install")()

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			set, err := resolveManifest(cmd.Context(), deps.fs, cfg, args[0])
			if err != nil {
				return err
			}

			policy := installer.Policy{}
			if cfg.Policy.Strict {
				policy = installer.StrictPolicy()
			}

			runner := deps.runner()
			inst := installer.New(installer.Options{
				Config:              cfg,
				FS:                  deps.fs,
				SourceControl:       deps.sourceControl(cfg, runner),
				Composer:            deps.composer(cfg, runner),
				Policy:              policy,
				EnforceRequirements: cfg.Policy.EnforceRequirements,
			})

			report, runErr := inst.Run(cmd.Context(), set)
			if report != nil {
				if err := renderer.RenderResult(report); err != nil {
					return err
				}
			}
			return runErr
		},
	}
}

// resolveManifest resolves the manifest chain at locator
func resolveManifest(ctx context.Context, fs types.FS, cfg *config.Config, locator string) (*manifest.ResolvedSet, error) {
	loader := manifest.NewLoader(fs, nil, cfg.HTTP.Timeout)
	return manifest.NewResolver(loader).Resolve(ctx, locator)
}
