package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/config"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/logger"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/version"
)

var (
	appConfig         *config.Application
	eventBus          *partybus.Bus
	eventSubscription *partybus.Subscription
	persistentOpts    = config.CliOnlyOptions{}
)

// configBinders bind the flags of each command to their viper keys. Keys shared between commands (e.g. the analysis
// options of "analyze" and "all") are bound only for the command that is actually run.
var configBinders = map[*cobra.Command]func(*pflag.FlagSet) error{}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var expected afterr.ExpectedErr
		if !errors.As(err, &expected) || appConfig == nil || !appConfig.Quiet {
			_ = stderrPrintLnf(err.Error())
		}
		os.Exit(1)
	}
}

// initialize runs before every command: flags are bound, then configuration, logging and the event bus are set up.
func initialize(cmd *cobra.Command) error {
	if bind, ok := configBinders[cmd]; ok {
		if err := bind(cmd.Flags()); err != nil {
			return fmt.Errorf("unable to bind flags: %w", err)
		}
	}

	for _, fn := range []func() error{
		initAppConfig,
		initLogging,
	} {
		if err := fn(); err != nil {
			return err
		}
	}

	logAppConfig()
	logAppVersion()
	initEventBus()
	return nil
}

// bindFlags binds each viper key to the named flag.
func bindFlags(flags *pflag.FlagSet, keyToFlag map[string]string) error {
	for key, name := range keyToFlag {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("no flag %q to bind to %q", name, key)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("unable to bind flag %q: %w", name, err)
		}
	}
	return nil
}

func initAppConfig() error {
	cfg, err := config.LoadApplicationConfig(viper.GetViper(), persistentOpts)
	if err != nil {
		return fmt.Errorf("failed to load application config: %w", err)
	}
	appConfig = cfg
	return nil
}

func initLogging() error {
	cfg := logger.LogrusConfig{
		EnableConsole: (appConfig.Log.FileLocation == "" || appConfig.CliOptions.Verbosity > 0) && !appConfig.Quiet,
		EnableFile:    appConfig.Log.FileLocation != "",
		Level:         appConfig.Log.LevelOpt,
		Structured:    appConfig.Log.Structured,
		FileLocation:  appConfig.Log.FileLocation,
	}

	logWrapper, err := logger.NewLogrusLogger(cfg)
	if err != nil {
		return err
	}

	aft.SetLogger(logWrapper)
	return nil
}

func logAppConfig() {
	log.Debugf("application config:\n%+v", color.Magenta.Sprint(appConfig.String()))
}

func logAppVersion() {
	versionInfo := version.FromBuild()
	log.Infof("%s version: %s", internal.ApplicationName, versionInfo.Version)

	var fields map[string]interface{}
	bytes, err := json.Marshal(versionInfo)
	if err != nil {
		return
	}
	err = json.Unmarshal(bytes, &fields)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for idx, field := range keys {
		value := fields[field]
		branch := "├──"
		if idx == len(fields)-1 {
			branch = "└──"
		}
		log.Debugf("  %s %s: %s", branch, field, value)
	}
}

func initEventBus() {
	eventBus = partybus.NewBus()
	eventSubscription = eventBus.Subscribe()

	aft.SetBus(eventBus)
}
