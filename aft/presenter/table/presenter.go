package table

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
)

const maxDescriptionWidth = 60

// Presenter is a generic struct for holding fields needed for reporting
type Presenter struct {
	document  models.Document
	withColor bool
}

// NewPresenter is a *Presenter constructor
func NewPresenter(doc models.Document, withColor bool) *Presenter {
	return &Presenter{
		document:  doc,
		withColor: withColor,
	}
}

// Present renders one row per finding, most severe first
func (p *Presenter) Present(output io.Writer) error {
	rs := getRows(p.document)

	if len(rs) == 0 {
		_, err := io.WriteString(output, "No findings\n")
		return err
	}

	table := tablewriter.NewWriter(output)
	table.SetHeader([]string{"Severity", "Rule", "Type", "Location", "Description"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	if p.withColor {
		for _, row := range rs.Render() {
			table.Rich(row, []tablewriter.Colors{getSeverityColor(row[0]), {}, {}, {}, {}})
		}
	} else {
		table.AppendBulk(rs.Render())
	}

	table.Render()

	return nil
}

func getRows(doc models.Document) rows {
	var rs rows
	for _, group := range doc.BySeverity {
		for _, f := range group.Findings {
			rs = append(rs, newRow(f))
		}
	}
	return rs
}

type rows []row

type row struct {
	Severity    string
	RuleID      string
	Type        string
	Location    string
	Description string
}

func newRow(f finding.Finding) row {
	return row{
		Severity:    f.Severity.String(),
		RuleID:      f.RuleID,
		Type:        f.Type,
		Location:    f.Location(),
		Description: internal.Truncate(f.Description, maxDescriptionWidth),
	}
}

func (r row) Columns() []string {
	return []string{r.Severity, r.RuleID, r.Type, r.Location, r.Description}
}

func (rs rows) Render() [][]string {
	out := make([][]string, len(rs))
	for idx, r := range rs {
		out[idx] = r.Columns()
	}
	return out
}

func getSeverityColor(severity string) tablewriter.Colors {
	severityFontType, severityColor := tablewriter.Normal, tablewriter.Normal

	switch strings.ToLower(severity) {
	case "critical":
		severityFontType = tablewriter.Bold
		severityColor = tablewriter.FgRedColor
	case "high":
		severityColor = tablewriter.FgRedColor
	case "medium":
		severityColor = tablewriter.FgYellowColor
	case "low":
		severityColor = tablewriter.FgGreenColor
	case "info":
		severityColor = tablewriter.FgBlueColor
	}

	return tablewriter.Colors{severityFontType, severityColor}
}
