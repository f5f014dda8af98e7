package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/disassemble"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type allOptions struct {
	APK    string
	Out    string
	SHA256 string
}

var (
	allOpts       allOptions
	allReportOpts reportOptions
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "extract, decompile, analyze and report on an APK in one go",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		reportCfg, err := reportConfig(allReportOpts)
		if err != nil {
			return err
		}
		return runWorker(func(ctx context.Context) error {
			return runAll(ctx, allOpts, reportCfg)
		})
	},
}

func init() {
	flags := allCmd.Flags()
	flags.StringVar(&allOpts.APK, "apk", "", "the APK to analyze (path, or http(s)/s3/gcs URL)")
	flags.StringVar(&allOpts.Out, "out", "", "the project directory to create (default: output/<apk name>)")
	flags.StringVar(&allOpts.SHA256, "sha256", "", "expected digest of the APK, checked before extraction")
	_ = allCmd.MarkFlagRequired("apk")
	addReportFlags(flags, &allReportOpts, presenter.PDFFormat)
	addAnalysisFlags(flags)

	configBinders[allCmd] = bindAnalysisConfigOptions
	rootCmd.AddCommand(allCmd)
}

func runAll(ctx context.Context, opts allOptions, reportCfg presenter.Config) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	result, err := toolkit.FullAnalysis(ctx, opts.APK, aft.FullAnalysisConfig{
		OutDir:    opts.Out,
		Extract:   disassemble.Config{Digest: opts.SHA256},
		Analysis:  appConfig.Analysis.ToConfig(),
		Report:    reportCfg,
		ReportDir: appConfig.Report.Dir,
		AppConfig: appConfig,
	})
	if result != nil {
		notifyReports(result.ReportPaths)
	}
	if err != nil {
		return err
	}

	recordHistory(result.Result, result.ReportPaths)

	s := result.Summary
	bus.Notify("all", fmt.Sprintf("Project %s: %d findings (critical %d, high %d, medium %d, low %d, info %d), risk score %d/100",
		result.ProjectDir, s.Total, s.Critical, s.High, s.Medium, s.Low, s.Info, s.RiskScore))

	return checkSeverityThreshold(result.Result)
}
