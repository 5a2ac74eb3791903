// Package cli builds the canasta-modules command tree.
package cli

import (
	"embed"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/canastawiki/canasta-modules/internal/version"
	"github.com/canastawiki/canasta-modules/pkg/cobrax/topics"
	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/ui"
)

//go:embed topics/*.md
var topicFiles embed.FS

// globalOptions holds the persistent flags shared by all commands
type globalOptions struct {
	verbosity  int
	format     string
	strict     bool
	enforce    bool
	configFile string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmdWith(defaultInstallDeps())
}

func newRootCmdWith(deps installDeps) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "canasta-modules",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	flags.BoolVar(&opts.strict, "strict", false, MsgFlagStrict)
	flags.BoolVar(&opts.enforce, "enforce-requirements", false, MsgFlagEnforce)
	flags.StringVar(&opts.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddCommand(newInstallCmd(opts, deps))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newFingerprintCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		if manager, err := topics.Load(sub, topics.Options{
			Renderer: topics.NewGlamourRenderer(ui.DetectFormat(os.Stdout) != ui.FormatTerminal),
		}); err == nil {
			manager.Install(rootCmd)
		}
	}

	return rootCmd
}

// loadConfig layers the persistent flags over the configuration file and
// environment. Flags only override when they were set.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("strict") {
		overrides["policy.strict"] = o.strict
	}
	if cmd.Flags().Changed("enforce-requirements") {
		overrides["policy.enforce_requirements"] = o.enforce
	}
	return config.LoadConfigurationWithOverrides(o.configFile, overrides)
}

// renderer returns a renderer for the --format flag writing to w
func (o *globalOptions) renderer(w io.Writer) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, w)
}

// ReportError renders err in the format selected on root's --format flag.
// Unknown formats fall back to plain text.
func ReportError(root *cobra.Command, err error) {
	out := root.ErrOrStderr()
	name, _ := root.PersistentFlags().GetString("format")
	format, perr := ui.ParseFormat(name)
	if perr != nil {
		format = ui.FormatText
	}
	renderer, rerr := ui.NewRenderer(format, out)
	if rerr != nil {
		renderer, _ = ui.NewRenderer(ui.FormatText, out)
	}
	_ = renderer.RenderError(err)
}
