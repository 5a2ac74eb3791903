package cli

import (
	"github.com/spf13/cobra"

	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/ui"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <manifest>",
		Short: MsgResolveShort,
		Long:  MsgResolveLong,
		Example: `  # Show what an image build would install
  canasta-modules resolve ./extensions-skins.yaml

  # Machine-readable
  canasta-modules resolve --format json https://example.org/wiki.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			set, err := resolveManifest(cmd.Context(), filesystem.NewOS(), cfg, args[0])
			if err != nil {
				return err
			}
			return renderer.RenderResult(ui.NewResolution(args[0], set))
		},
	}
}
