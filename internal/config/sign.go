package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/rebuild"
)

const maskedValue = "******"

// sign contains the keystore and scheme options used when signing APKs.
type sign struct {
	Keystore string `yaml:"keystore" json:"keystore" mapstructure:"keystore"`
	Alias    string `yaml:"alias" json:"alias" mapstructure:"alias"`
	// IMPORTANT: the passwords are masked in any YAML/JSON output (sensitive information)
	StorePass        string `yaml:"store-pass" json:"-" mapstructure:"store-pass"`
	KeyPass          string `yaml:"key-pass" json:"-" mapstructure:"key-pass"`
	GenerateKeystore bool   `yaml:"generate-debug-keystore" json:"generate-debug-keystore" mapstructure:"generate-debug-keystore"` // create debug.keystore with keytool when missing
	Zipalign         bool   `yaml:"zipalign" json:"zipalign" mapstructure:"zipalign"`
	V1               bool   `yaml:"v1" json:"v1" mapstructure:"v1"`
	V2               bool   `yaml:"v2" json:"v2" mapstructure:"v2"`
	V3               bool   `yaml:"v3" json:"v3" mapstructure:"v3"`
	V4               bool   `yaml:"v4" json:"v4" mapstructure:"v4"`
}

func (cfg sign) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("sign.keystore", rebuild.DebugKeystoreName)
	v.SetDefault("sign.alias", rebuild.DebugKeyAlias)
	v.SetDefault("sign.store-pass", rebuild.DebugKeystorePass)
	v.SetDefault("sign.key-pass", "")
	v.SetDefault("sign.generate-debug-keystore", true)
	v.SetDefault("sign.zipalign", true)
	v.SetDefault("sign.v1", true)
	v.SetDefault("sign.v2", true)
	v.SetDefault("sign.v3", false)
	v.SetDefault("sign.v4", false)
}

func (cfg sign) masked() sign {
	if cfg.StorePass != "" {
		cfg.StorePass = maskedValue
	}
	if cfg.KeyPass != "" {
		cfg.KeyPass = maskedValue
	}
	return cfg
}

func (cfg sign) ToConfig() rebuild.SignConfig {
	return rebuild.SignConfig{
		Keystore:  cfg.Keystore,
		Alias:     cfg.Alias,
		StorePass: cfg.StorePass,
		KeyPass:   cfg.KeyPass,
		// only the conventional debug keystore is ever generated on demand
		GenerateKeystore: cfg.GenerateKeystore && filepath.Base(cfg.Keystore) == rebuild.DebugKeystoreName,
		Zipalign:         cfg.Zipalign,
		V1:               cfg.V1,
		V2:               cfg.V2,
		V3:               cfg.V3,
		V4:               cfg.V4,
	}
}
