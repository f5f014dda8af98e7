package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
)

// history controls the local record of past analyses.
type history struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" json:"path" mapstructure:"path"` // sqlite database location
}

func (cfg history) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("history.enabled", true)
	// e.g. ~/.local/share/aft/history.db
	v.SetDefault("history.path", filepath.Join(xdg.DataHome, internal.ApplicationName, "history.db"))
}
