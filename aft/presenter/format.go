package presenter

import (
	"path/filepath"
	"strings"
)

const (
	UnknownFormat  Format = "unknown"
	MarkdownFormat Format = "md"
	HTMLFormat     Format = "html"
	PDFFormat      Format = "pdf"
	JSONFormat     Format = "json"
	TableFormat    Format = "table"
	SarifFormat    Format = "sarif"
	TemplateFormat Format = "template"
)

// Format is a dedicated type to represent a specific kind of presenter output format.
type Format string

func (f Format) String() string {
	return string(f)
}

// Parse returns the presenter.Format specified by the given user input.
func Parse(userInput string) Format {
	switch strings.ToLower(strings.TrimSpace(userInput)) {
	case "", "md", "markdown":
		return MarkdownFormat
	case HTMLFormat.String(), "htm":
		return HTMLFormat
	case PDFFormat.String():
		return PDFFormat
	case JSONFormat.String():
		return JSONFormat
	case TableFormat.String():
		return TableFormat
	case SarifFormat.String():
		return SarifFormat
	case TemplateFormat.String():
		return TemplateFormat
	default:
		return UnknownFormat
	}
}

// Extension is the file extension used for generated report names. Template reports take the extension of
// the template file name once any .tmpl suffix is removed (report.csv.tmpl -> csv), falling back to txt.
func (f Format) Extension(templateFile string) string {
	switch f {
	case TemplateFormat:
		name := strings.TrimSuffix(filepath.Base(templateFile), ".tmpl")
		if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" && ext != "tmpl" {
			return ext
		}
		return "txt"
	case SarifFormat:
		return "sarif"
	default:
		return f.String()
	}
}

// AvailableFormats is a list of presenter format options available to users.
var AvailableFormats = []Format{
	MarkdownFormat,
	HTMLFormat,
	PDFFormat,
	JSONFormat,
	TableFormat,
	SarifFormat,
	TemplateFormat,
}
