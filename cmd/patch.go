package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/rebuild"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type patchOptions struct {
	Dir    string
	Patch  string
	DryRun bool
}

var patchOpts patchOptions

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "apply find/replace patches from a YAML file to an extracted project",
	Long: `Applies every patch of the file to the project files matching its glob. Either every patch applies or
nothing is written. With --dry-run the unified diff of the changes is shown instead.

Patch file format:
    patches:
      - file: "smali/smali/**/RootCheck.smali"   # glob relative to the project directory
        find: "const/4 v0, 0x1"
        replace: "const/4 v0, 0x0"
        regex: false                             # find is a Go regular expression when true
        count: 1                                 # expected number of replacements (0 = at least one)`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runWorker(func(ctx context.Context) error {
			return runPatch(patchOpts)
		})
	},
}

func init() {
	flags := patchCmd.Flags()
	flags.StringVar(&patchOpts.Dir, "dir", "", "the project directory created by extract")
	flags.StringVar(&patchOpts.Patch, "patch", "", "the YAML patch file")
	flags.BoolVar(&patchOpts.DryRun, "dry-run", false, "show the changes without writing them")
	_ = patchCmd.MarkFlagRequired("dir")
	_ = patchCmd.MarkFlagRequired("patch")

	rootCmd.AddCommand(patchCmd)
}

func runPatch(opts patchOptions) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	result, err := toolkit.Patch(opts.Dir, opts.Patch, opts.DryRun)
	if err != nil {
		return fmt.Errorf("failed to patch %q: %w", opts.Dir, err)
	}

	if opts.DryRun {
		bus.Report("patch", patchDiff(result))
	}
	bus.Notify("patch", patchSummary(result))
	return nil
}

func patchDiff(result *rebuild.PatchResult) string {
	var sb strings.Builder
	for _, c := range result.Changes {
		sb.WriteString(c.Diff)
	}
	return sb.String()
}

func patchSummary(result *rebuild.PatchResult) string {
	total := 0
	for _, c := range result.Changes {
		total += c.Replacements
	}
	verb := "Patched"
	if result.DryRun {
		verb = "Would patch"
	}
	return fmt.Sprintf("%s %d files (%d replacements)", verb, len(result.Changes), total)
}
