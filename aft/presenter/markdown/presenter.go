package markdown

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
)

//go:embed report.md.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report.md").Funcs(sprig.TxtFuncMap()).Funcs(internal.Funcs).Parse(reportTemplate))

// Presenter renders the report as Markdown.
type Presenter struct {
	document models.Document
}

func NewPresenter(doc models.Document) *Presenter {
	return &Presenter{document: doc}
}

func (p *Presenter) Present(output io.Writer) error {
	if err := tmpl.Execute(output, p.document); err != nil {
		return fmt.Errorf("unable to render markdown report: %w", err)
	}
	return nil
}
