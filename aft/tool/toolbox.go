package tool

import (
	"context"
	"time"
)

const (
	ApktoolName   = "apktool"
	JadxName      = "jadx"
	ZipalignName  = "zipalign"
	ApksignerName = "apksigner"
	JarsignerName = "jarsigner"
	KeytoolName   = "keytool"
)

// Config holds the options for every external tool aft drives.
type Config struct {
	Apktool   Options `yaml:"apktool" json:"apktool" mapstructure:"apktool"`
	Jadx      Options `yaml:"jadx" json:"jadx" mapstructure:"jadx"`
	Zipalign  Options `yaml:"zipalign" json:"zipalign" mapstructure:"zipalign"`
	Apksigner Options `yaml:"apksigner" json:"apksigner" mapstructure:"apksigner"`
	Jarsigner Options `yaml:"jarsigner" json:"jarsigner" mapstructure:"jarsigner"`
	Keytool   Options `yaml:"keytool" json:"keytool" mapstructure:"keytool"`
}

func DefaultConfig() Config {
	return Config{
		Apktool: Options{Timeout: 30 * time.Minute},
		Jadx:    Options{Timeout: 60 * time.Minute},
	}
}

// Toolbox is the set of configured external tools, all sharing one executor.
type Toolbox struct {
	Apktool   Apktool
	Jadx      Jadx
	Zipalign  Zipalign
	Apksigner Apksigner
	Jarsigner Jarsigner
	Keytool   Keytool
	executor  Executor
}

func NewToolbox(cfg Config, executor Executor) (*Toolbox, error) {
	if executor == nil {
		executor = NewExecutor()
	}

	apktool, err := newTool(ApktoolName, cfg.Apktool, "2.4.0", "--version")
	if err != nil {
		return nil, err
	}
	jadx, err := newTool(JadxName, cfg.Jadx, "1.2.0", "--version")
	if err != nil {
		return nil, err
	}
	zipalign, err := newTool(ZipalignName, cfg.Zipalign, "")
	if err != nil {
		return nil, err
	}
	apksigner, err := newTool(ApksignerName, cfg.Apksigner, "", "--version")
	if err != nil {
		return nil, err
	}
	jarsigner, err := newTool(JarsignerName, cfg.Jarsigner, "")
	if err != nil {
		return nil, err
	}
	keytool, err := newTool(KeytoolName, cfg.Keytool, "")
	if err != nil {
		return nil, err
	}

	return &Toolbox{
		Apktool:   Apktool{Tool: apktool, exec: executor},
		Jadx:      Jadx{Tool: jadx, exec: executor},
		Zipalign:  Zipalign{Tool: zipalign, exec: executor},
		Apksigner: Apksigner{Tool: apksigner, exec: executor},
		Jarsigner: Jarsigner{Tool: jarsigner, exec: executor},
		Keytool:   Keytool{Tool: keytool, exec: executor},
		executor:  executor,
	}, nil
}

func (b Toolbox) Tools() []Tool {
	return []Tool{
		b.Apktool.Tool,
		b.Jadx.Tool,
		b.Zipalign.Tool,
		b.Apksigner.Tool,
		b.Jarsigner.Tool,
		b.Keytool.Tool,
	}
}

// Available reports whether the given tool can be located.
func (b Toolbox) Available(t Tool) bool {
	_, err := b.executor.Locate(t)
	return err == nil
}

// Require returns an error wrapping afterr.ErrToolNotFound when the tool cannot be located.
func (b Toolbox) Require(t Tool) error {
	_, err := b.executor.Locate(t)
	return err
}

// Check reports the installation status of every tool.
func (b Toolbox) Check(ctx context.Context) []Status {
	var statuses []Status
	for _, t := range b.Tools() {
		statuses = append(statuses, Check(ctx, b.executor, t))
	}
	return statuses
}
