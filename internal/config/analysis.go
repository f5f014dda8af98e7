package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// analysisOptions contains the options controlling how an extracted project is scanned.
type analysisOptions struct {
	Deep           bool                 `yaml:"deep" json:"deep" mapstructure:"deep"`                            // --deep, also scan smali, debug logging and asset content types
	Patterns       string               `yaml:"patterns" json:"patterns" mapstructure:"patterns"`                // --patterns, replaces the built-in rule set
	Parallelism    int                  `yaml:"parallelism" json:"parallelism" mapstructure:"parallelism"`       // number of files scanned concurrently (0 = number of CPUs)
	MaxFileSize    string               `yaml:"max-file-size" json:"max-file-size" mapstructure:"max-file-size"` // source files larger than this are skipped (e.g. "2MB")
	Ignore         []finding.IgnoreRule `yaml:"ignore" json:"ignore" mapstructure:"ignore"`
	FailOn         string               `yaml:"fail-on-severity" json:"fail-on-severity" mapstructure:"fail-on-severity"` // --fail-on
	FailOnSeverity *finding.Severity    `yaml:"-" json:"-"`
	maxFileSize    int64
}

func (cfg analysisOptions) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("analysis.deep", false)
	v.SetDefault("analysis.patterns", "")
	v.SetDefault("analysis.parallelism", 0)
	v.SetDefault("analysis.max-file-size", "2MB")
	v.SetDefault("analysis.fail-on-severity", "")
}

func (cfg *analysisOptions) parseConfigValues() error {
	if cfg.FailOn != "" {
		failOnSeverity := finding.ParseSeverity(cfg.FailOn)
		if failOnSeverity == finding.UnknownSeverity {
			return fmt.Errorf("bad --fail-on severity value '%s'", cfg.FailOn)
		}
		cfg.FailOnSeverity = &failOnSeverity
	}

	if cfg.Parallelism < 0 {
		return fmt.Errorf("analysis parallelism must not be negative (given %d)", cfg.Parallelism)
	}

	if cfg.MaxFileSize != "" {
		size, err := humanize.ParseBytes(cfg.MaxFileSize)
		if err != nil {
			return fmt.Errorf("bad analysis max-file-size value %q: %w", cfg.MaxFileSize, err)
		}
		cfg.maxFileSize = int64(size)
	}
	return nil
}

func (cfg analysisOptions) ToConfig() analysis.Config {
	return analysis.Config{
		Deep:         cfg.Deep,
		PatternsFile: cfg.Patterns,
		Parallelism:  cfg.Parallelism,
		MaxFileSize:  cfg.maxFileSize,
		IgnoreRules:  cfg.Ignore,
	}
}
