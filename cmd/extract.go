package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/disassemble"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type extractOptions struct {
	APK       string
	Out       string
	Decompile bool
	SHA256    string
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "unpack an APK (local path or URL) into a project directory",
	Long: `Unpacks the APK with apktool into <out>/smali, copies the raw manifest, assets and native libraries, records
apk_info.json and (with --decompile) decompiles the bytecode to Java sources with jadx into <out>/java.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runWorker(func(ctx context.Context) error {
			return runExtract(ctx, extractOpts)
		})
	},
}

func init() {
	flags := extractCmd.Flags()
	flags.StringVar(&extractOpts.APK, "apk", "", "the APK to extract (path, or http(s)/s3/gcs URL)")
	flags.StringVar(&extractOpts.Out, "out", "", "the project directory to create (default: output/<apk name>)")
	flags.BoolVar(&extractOpts.Decompile, "decompile", false, "also decompile to Java sources with jadx")
	flags.StringVar(&extractOpts.SHA256, "sha256", "", "expected digest of the APK, checked before extraction")
	_ = extractCmd.MarkFlagRequired("apk")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, opts extractOptions) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	ws, err := toolkit.Extract(ctx, opts.APK, opts.Out, disassemble.Config{Decompile: opts.Decompile, Digest: opts.SHA256})
	if err != nil {
		return fmt.Errorf("failed to extract %q: %w", opts.APK, err)
	}

	bus.Notify("extract", fmt.Sprintf("Project written to %s", ws.Root))
	return nil
}
