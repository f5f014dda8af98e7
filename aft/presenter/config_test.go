package presenter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestValidatedConfig(t *testing.T) {
	validTemplate := writeTemplate(t, `{{ range .Findings }}{{ .RuleID }},{{ upper .Type }}{{ end }}`)
	invalidTemplate := writeTemplate(t, `{{ .Nope `)

	tests := []struct {
		name         string
		outputs      []string
		defaultFile  string
		templateFile string
		expected     []output
		wantErr      string
	}{
		{
			name:     "defaults to markdown",
			expected: []output{{name: "md", format: MarkdownFormat}},
		},
		{
			name:        "default file applies to formats without their own",
			outputs:     []string{"html", "json=out.json"},
			defaultFile: "report.html",
			expected:    []output{{name: "html", format: HTMLFormat, path: "report.html"}, {name: "json", format: JSONFormat, path: "out.json"}},
		},
		{
			name:         "template format",
			outputs:      []string{"template"},
			templateFile: validTemplate,
			expected:     []output{{name: "template", format: TemplateFormat}},
		},
		{
			name:    "unknown format",
			outputs: []string{"docx"},
			wantErr: `unsupported output format "docx"`,
		},
		{
			name:    "unknown format with a file",
			outputs: []string{"xlsx=report.xlsx"},
			wantErr: `unsupported output format "xlsx"`,
		},
		{
			name:    "template format without a template",
			outputs: []string{"template"},
			wantErr: "must specify path to template file",
		},
		{
			name:         "missing template file",
			outputs:      []string{"template"},
			templateFile: "/does/not/exist.tmpl",
			wantErr:      "does not exist",
		},
		{
			name:         "unparsable template",
			outputs:      []string{"template"},
			templateFile: invalidTemplate,
			wantErr:      "unable to parse template",
		},
		{
			name:         "template file without template format",
			outputs:      []string{"md"},
			templateFile: validTemplate,
			wantErr:      "output format must be selected",
		},
		{
			name:        "two reports claiming one file",
			outputs:     []string{"md", "html"},
			defaultFile: "report.out",
			wantErr:     "cannot both be written",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ValidatedConfig(tt.outputs, tt.defaultFile, tt.templateFile)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.outputs)
			assert.Equal(t, tt.templateFile, cfg.TemplateFilePath)
		})
	}
}

func TestConfig_Formats(t *testing.T) {
	cfg, err := ValidatedConfig([]string{"pdf", "md=x.md", "table"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, []Format{PDFFormat, MarkdownFormat, TableFormat}, cfg.Formats())
}
