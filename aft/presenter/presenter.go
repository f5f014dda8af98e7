package presenter

import (
	"io"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/html"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/json"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/markdown"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/pdf"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/sarif"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/table"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/template"
)

// Presenter is the main interface other Presenters need to implement
type Presenter interface {
	Present(io.Writer) error
}

// PDFConfig controls how PDF reports are printed.
type PDFConfig = pdf.Config

// GetPresenter retrieves a Presenter that matches a CLI option
func GetPresenter(format Format, cfg Config, doc models.Document) Presenter {
	switch format {
	case MarkdownFormat:
		return markdown.NewPresenter(doc)
	case HTMLFormat:
		return html.NewPresenter(doc)
	case PDFFormat:
		return pdf.NewPresenter(doc, cfg.PDF)
	case JSONFormat:
		return json.NewPresenter(doc)
	case TableFormat:
		return table.NewPresenter(doc, cfg.Color)
	case SarifFormat:
		return sarif.NewPresenter(doc)
	case TemplateFormat:
		return template.NewPresenter(doc, cfg.TemplateFilePath)
	default:
		return nil
	}
}
