package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/store"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

// reportOptions are the report flags shared by "analyze" and "all".
type reportOptions struct {
	Outputs []string
	File    string
}

var (
	analyzeDir        string
	analyzeReportOpts reportOptions
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "run the security analysis over an extracted project and write reports",
	Long: fmt.Sprintf(`Analyzes the manifest, decompiled sources, permissions and resources of a project created by "extract".
Reports are written to the configured report directory (default "reports") as report_<timestamp>.<ext>.

Report formats (-r/--report, repeatable, "format=path" to choose a file): %s`, formatNames()),
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		reportCfg, err := reportConfig(analyzeReportOpts)
		if err != nil {
			return err
		}
		return runWorker(func(ctx context.Context) error {
			return runAnalyze(ctx, analyzeDir, reportCfg)
		})
	},
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeDir, "dir", "", "the project directory created by extract")
	_ = analyzeCmd.MarkFlagRequired("dir")
	addReportFlags(flags, &analyzeReportOpts, presenter.MarkdownFormat)
	addAnalysisFlags(flags)

	configBinders[analyzeCmd] = bindAnalysisConfigOptions
	rootCmd.AddCommand(analyzeCmd)
}

func formatNames() string {
	var names []string
	for _, f := range presenter.AvailableFormats {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func severityOptions() string {
	var names []string
	for _, s := range finding.AllSeverities {
		names = append(names, strings.ToLower(s.String()))
	}
	return strings.Join(names, ", ")
}

func addReportFlags(flags *pflag.FlagSet, opts *reportOptions, defaultFormat presenter.Format) {
	flags.StringArrayVarP(&opts.Outputs, "report", "r", []string{defaultFormat.String()},
		fmt.Sprintf("report format to write, optionally with a destination as format=path (formats: %s)", formatNames()))
	flags.StringVar(&opts.File, "file", "", "file to write the report to (default: <report dir>/report_<timestamp>.<ext>)")
	flags.StringP("template", "t", "", "template file used by the template report format")
}

func addAnalysisFlags(flags *pflag.FlagSet) {
	flags.Bool("deep", false, "also scan smali when Java sources exist, report INFO level findings and inspect asset content types")
	flags.StringP("fail-on", "f", "",
		fmt.Sprintf("exit with an error when a finding at or above the given severity is found (options: %s)", severityOptions()))
	flags.String("patterns", "", "a YAML rule file that replaces the built-in rule set")
}

func bindAnalysisConfigOptions(flags *pflag.FlagSet) error {
	return bindFlags(flags, map[string]string{
		"analysis.deep":             "deep",
		"analysis.fail-on-severity": "fail-on",
		"analysis.patterns":         "patterns",
		"report.template-file":      "template",
	})
}

func reportConfig(opts reportOptions) (presenter.Config, error) {
	// --template is bound to report.template-file
	var outputs []string
	for _, o := range opts.Outputs {
		outputs = append(outputs, internal.SplitCommaSeparatedString(o)...)
	}
	cfg, err := presenter.ValidatedConfig(outputs, opts.File, appConfig.Report.TemplateFile)
	if err != nil {
		return cfg, err
	}
	cfg.PDF = appConfig.Report.ToPDFConfig()
	cfg.Color = term.IsTerminal(int(os.Stdout.Fd()))
	return cfg, nil
}

func runAnalyze(ctx context.Context, dir string, reportCfg presenter.Config) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	result, err := toolkit.Analyze(ctx, dir, appConfig.Analysis.ToConfig())
	if err != nil {
		return fmt.Errorf("failed to analyze %q: %w", dir, err)
	}

	paths, err := aft.Report(*result, reportCfg, appConfig.Report.Dir, appConfig)
	notifyReports(paths)
	if err != nil {
		return err
	}

	recordHistory(result, paths)

	return checkSeverityThreshold(result)
}

func notifyReports(paths []string) {
	for _, p := range paths {
		bus.Notify("report", fmt.Sprintf("Report written to %s", p))
	}
}

func checkSeverityThreshold(result *analysis.Result) error {
	threshold := appConfig.Analysis.FailOnSeverity
	if threshold == nil {
		return nil
	}
	if n := finding.CountAtOrAbove(result.Findings, *threshold); n > 0 {
		log.Warnf("%d findings at or above %s", n, threshold.String())
		return afterr.ErrAboveSeverityThreshold
	}
	return nil
}

// recordHistory adds the analysis to the history database. Failures are logged but never fail the command.
func recordHistory(result *analysis.Result, reports []string) {
	if !appConfig.History.Enabled {
		return
	}

	s, err := store.Open(appConfig.History.Path)
	if err != nil {
		log.Warnf("unable to open analysis history: %+v", err)
		return
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Debugf("unable to close analysis history: %+v", err)
		}
	}()

	var pkg, ver, sha string
	if result.Info != nil {
		pkg, ver, sha = result.Info.PackageName, result.Info.VersionName, result.Info.SHA256
	}
	record := store.NewAnalysisRecord(pkg, ver, sha, result.Project, result.Summary, reports)
	if err := s.Add(&record); err != nil {
		log.Warnf("unable to record analysis history: %+v", err)
	}
}
