package html

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report.html").Funcs(sprig.FuncMap()).Funcs(internal.Funcs).Parse(reportTemplate))

// Presenter renders the report as a standalone HTML page (inline CSS, no external resources).
type Presenter struct {
	document models.Document
}

func NewPresenter(doc models.Document) *Presenter {
	return &Presenter{document: doc}
}

func (p *Presenter) Present(output io.Writer) error {
	if err := tmpl.Execute(output, p.document); err != nil {
		return fmt.Errorf("unable to render html report: %w", err)
	}
	return nil
}
