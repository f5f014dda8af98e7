package config

import (
	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
)

// tools holds where to find each external executable and how to invoke it.
type tools struct {
	tool.Config `yaml:",inline" mapstructure:",squash"`
}

func (cfg tools) loadDefaultValues(v *viper.Viper) {
	defaults := tool.DefaultConfig()
	for name, opts := range map[string]tool.Options{
		tool.ApktoolName:   defaults.Apktool,
		tool.JadxName:      defaults.Jadx,
		tool.ZipalignName:  defaults.Zipalign,
		tool.ApksignerName: defaults.Apksigner,
		tool.JarsignerName: defaults.Jarsigner,
		tool.KeytoolName:   defaults.Keytool,
	} {
		v.SetDefault("tools."+name+".path", opts.Path)
		v.SetDefault("tools."+name+".args", opts.Args)
		v.SetDefault("tools."+name+".timeout", opts.Timeout)
	}
}

func (cfg tools) ToConfig() tool.Config {
	return cfg.Config
}
