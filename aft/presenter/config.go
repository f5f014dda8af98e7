package presenter

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
	presenterTemplate "github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/template"
)

// Config is the presenter domain's configuration data structure.
type Config struct {
	outputs          []output
	TemplateFilePath string
	PDF              PDFConfig
	// Color enables severity colors for reports shown on the terminal.
	Color bool
}

type output struct {
	// name is the format as the user gave it
	name   string
	format Format
	path   string
}

// ValidatedConfig returns a new, validated presenter.Config. If a valid Config cannot be created using the given input,
// an error is returned.
func ValidatedConfig(outputs []string, defaultFile string, outputTemplateFile string) (Config, error) {
	if len(outputs) == 0 {
		outputs = []string{MarkdownFormat.String()}
	}

	parsed := parseOutputs(outputs, defaultFile)
	hasTemplateFormat := false
	claimed := map[string]Format{}

	for _, o := range parsed {
		if o.format == UnknownFormat {
			return Config{}, fmt.Errorf("unsupported output format %q, supported formats are: %+v", o.name,
				AvailableFormats)
		}

		if o.path != "" {
			if other, ok := claimed[o.path]; ok {
				return Config{}, fmt.Errorf("the %q and %q reports cannot both be written to %q", other, o.format, o.path)
			}
			claimed[o.path] = o.format
		}

		if o.format == TemplateFormat {
			hasTemplateFormat = true

			if outputTemplateFile == "" {
				return Config{}, fmt.Errorf("must specify path to template file when using %q output format",
					TemplateFormat)
			}

			if _, err := os.Stat(outputTemplateFile); errors.Is(err, os.ErrNotExist) {
				// file does not exist
				return Config{}, fmt.Errorf("template file %q does not exist",
					outputTemplateFile)
			}

			if _, err := template.New("").Funcs(sprig.TxtFuncMap()).Funcs(internal.Funcs).Funcs(presenterTemplate.FuncMap).ParseFiles(outputTemplateFile); err != nil {
				return Config{}, fmt.Errorf("unable to parse template: %w", err)
			}
		}
	}

	if outputTemplateFile != "" && !hasTemplateFormat {
		return Config{}, fmt.Errorf("specified template file %q, but "+
			"%q output format must be selected in order to use a template file",
			outputTemplateFile, TemplateFormat)
	}

	return Config{
		outputs:          parsed,
		TemplateFilePath: outputTemplateFile,
	}, nil
}

// Formats lists the selected formats in the order they were given.
func (c Config) Formats() []Format {
	var out []Format
	for _, o := range c.outputs {
		out = append(out, o.format)
	}
	return out
}

// parseOutputs utility to parse command-line option strings and retain the existing behavior of default format and file
func parseOutputs(outputs []string, defaultFile string) (out []output) {
	for _, name := range outputs {
		name = strings.TrimSpace(name)

		// split to at most two parts for <format>=<file>
		parts := strings.SplitN(name, "=", 2)

		// default to the --file or empty string if not specified
		file := defaultFile

		// If a file is specified as part of the output formatName, use that
		if len(parts) > 1 {
			file = parts[1]
		}

		out = append(out, output{
			name:   parts[0],
			format: Parse(parts[0]),
			path:   strings.TrimSpace(file),
		})
	}
	return out
}
