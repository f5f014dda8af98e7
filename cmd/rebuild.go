package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type rebuildOptions struct {
	Dir    string
	Output string
	Sign   bool
}

var rebuildOpts rebuildOptions

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "build an extracted (and possibly patched) project back into an APK",
	Long: `Runs apktool over <dir>/smali, writing <dir>/dist/<package>-rebuilt.apk unless --output is given.
With --sign the rebuilt APK is also signed (see "sign" for the keystore options).`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runWorker(func(ctx context.Context) error {
			return runRebuild(ctx, rebuildOpts)
		})
	},
}

func init() {
	flags := rebuildCmd.Flags()
	flags.StringVar(&rebuildOpts.Dir, "dir", "", "the project directory created by extract")
	flags.StringVar(&rebuildOpts.Output, "output", "", "the APK to write (default: <dir>/dist/<package>-rebuilt.apk)")
	flags.BoolVar(&rebuildOpts.Sign, "sign", false, "sign the rebuilt APK")
	addKeystoreFlags(flags)
	_ = rebuildCmd.MarkFlagRequired("dir")

	configBinders[rebuildCmd] = func(flags *pflag.FlagSet) error {
		return bindFlags(flags, map[string]string{
			"sign.keystore": "keystore",
		})
	}
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(ctx context.Context, opts rebuildOptions) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	built, err := toolkit.Rebuild(ctx, opts.Dir, opts.Output)
	if err != nil {
		return fmt.Errorf("failed to rebuild %q: %w", opts.Dir, err)
	}
	bus.Notify("rebuild", fmt.Sprintf("Rebuilt APK written to %s", built))

	if !opts.Sign {
		return nil
	}

	result, err := toolkit.Sign(ctx, built, appConfig.Sign.ToConfig(), "")
	if err != nil {
		return fmt.Errorf("failed to sign %q: %w", built, err)
	}
	bus.Notify("sign", signedMessage(result))
	return nil
}
