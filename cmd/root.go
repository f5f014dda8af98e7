package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
)

var rootCmd = &cobra.Command{
	Use:   internal.ApplicationName,
	Short: fmt.Sprintf("%s: decompile, analyze, patch, rebuild and re-sign Android APKs", internal.ApplicationTitle),
	Long: internal.Tprintf(`Typical usage:
    {{.appName}} all --apk app.apk                       extract, decompile, analyze and report in one go
    {{.appName}} extract --apk app.apk --decompile       unpack into output/app
    {{.appName}} analyze --dir output/app --report html  analyze a project and write reports/report_<time>.html
    {{.appName}} patch --dir output/app --patch p.yaml   apply text patches to the project
    {{.appName}} rebuild --dir output/app --sign         build the project back into a signed APK
`, map[string]interface{}{
		"appName": internal.ApplicationName,
	}),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initialize(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		_ = cmd.Help()
		return fmt.Errorf("no command given")
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&persistentOpts.ConfigPath, "config", "c", "", "application config file")
	flags.CountVarP(&persistentOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")
	flags.BoolP("quiet", "q", false, "suppress all logging output")

	if err := viper.BindPFlag("quiet", flags.Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("unable to bind flag 'quiet': %+v", err))
	}
}
