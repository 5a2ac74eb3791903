package cli

import (
	"github.com/spf13/cobra"

	"github.com/canastawiki/canasta-modules/pkg/composer"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/fingerprint"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/ui"
)

func newFingerprintCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: MsgFingerprintShort,
		Long:  MsgFingerprintLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			fs := filesystem.NewOS()
			layout := paths.New(cfg.MediaWiki)

			local, err := composer.ReadLocalConfig(fs, layout.ComposerLocal())
			if err != nil {
				return err
			}
			result, err := fingerprint.NewWriter(fs, layout).Write(local.Extra.MergePlugin.Include)
			if err != nil {
				return err
			}
			return renderer.RenderResult(&ui.Fingerprint{
				Digest: result.Digest,
				Path:   result.Path,
				Files:  result.Files,
			})
		},
	}
}
