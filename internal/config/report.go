package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter"
)

// report contains the options for rendering analysis reports.
type report struct {
	Dir          string    `yaml:"dir" json:"dir" mapstructure:"dir"`                               // where generated reports are written
	TemplateFile string    `yaml:"template-file" json:"template-file" mapstructure:"template-file"` // -t, the template file used by the "template" format
	PDF          pdfReport `yaml:"pdf" json:"pdf" mapstructure:"pdf"`
}

type pdfReport struct {
	ChromePath string        `yaml:"chrome-path" json:"chrome-path" mapstructure:"chrome-path"` // browser used to print HTML to PDF (default: auto-detect)
	Timeout    time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	Landscape  bool          `yaml:"landscape" json:"landscape" mapstructure:"landscape"`
}

func (cfg report) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.template-file", "")
	v.SetDefault("report.pdf.chrome-path", "")
	v.SetDefault("report.pdf.timeout", time.Minute)
	v.SetDefault("report.pdf.landscape", false)
}

func (cfg *report) parseConfigValues() error {
	if cfg.PDF.Timeout < 0 {
		return fmt.Errorf("report.pdf.timeout must not be negative")
	}
	return nil
}

func (cfg report) ToPDFConfig() presenter.PDFConfig {
	return presenter.PDFConfig{
		ChromePath: cfg.PDF.ChromePath,
		Timeout:    cfg.PDF.Timeout,
		Landscape:  cfg.PDF.Landscape,
	}
}
