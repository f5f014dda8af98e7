package sarif

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/sarif"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
)

const (
	informationURI = "https://github.com/protalal11-ops/apk-forensic-toolkit"
	// fingerprintKey names the stable finding hash so code scanning can track a result across runs.
	fingerprintKey = "aftFingerprint/v1"
)

// Presenter holds the data for generating a report and implements the presenter.Presenter interface
type Presenter struct {
	document models.Document
}

// NewPresenter is a *Presenter constructor
func NewPresenter(doc models.Document) *Presenter {
	return &Presenter{document: doc}
}

// Present creates a SARIF-based report
func (pres *Presenter) Present(output io.Writer) error {
	doc, err := pres.toSarifReport()
	if err != nil {
		return err
	}
	return doc.PrettyWrite(output)
}

func (pres *Presenter) toSarifReport() (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	v := pres.document.Descriptor.Version
	if v == "" || strings.HasPrefix(v, "[") {
		// Need a semver to pass the MS SARIF validator
		v = "0.0.0-dev"
	}

	doc.AddRun(&sarif.Run{
		Tool: sarif.Tool{
			Driver: &sarif.ToolComponent{
				Name:           "aft",
				Version:        sp(v),
				InformationURI: sp(informationURI),
				Rules:          pres.sarifRules(),
			},
		},
		Results: pres.sarifResults(),
	})

	return doc, nil
}

// sarifRules describes every rule that produced at least one finding, in finding order
func (pres *Presenter) sarifRules() (out []*sarif.ReportingDescriptor) {
	seen := map[string]bool{}
	for _, f := range pres.document.Findings {
		if seen[f.RuleID] {
			continue
		}
		seen[f.RuleID] = true

		out = append(out, &sarif.ReportingDescriptor{
			ID:   f.RuleID,
			Name: sp(ruleName(f.Type)),
			ShortDescription: &sarif.MultiformatMessageString{
				Text: sp(f.Description),
			},
			FullDescription: &sarif.MultiformatMessageString{
				Text: sp(fmt.Sprintf("%s finding of %s severity", f.Category, strings.ToLower(f.Severity.String()))),
			},
			Help: helpText(f),
			Properties: sarif.Properties{
				"security-severity": securitySeverityValue(f.Severity),
			},
		})
	}
	return out
}

func helpText(f finding.Finding) *sarif.MultiformatMessageString {
	text := fmt.Sprintf("%s\nSeverity: %s\nRecommendation: %s", f.Description, f.Severity, f.Recommendation)
	markdown := fmt.Sprintf("**%s**\n\n| Severity | Type | CWE |\n| --- | --- | --- |\n| %s | %s | %s |\n\n%s\n",
		f.Description, f.Severity, f.Type, f.CWE, f.Recommendation)
	if f.CWE != "" {
		text += "\nCWE: " + f.CWE
	}
	return &sarif.MultiformatMessageString{
		Text:     &text,
		Markdown: &markdown,
	}
}

// ruleName turns a finding type such as HARDCODED_SECRET into HardcodedSecret
func ruleName(findingType string) string {
	buf := strings.Builder{}
	for _, part := range strings.Split(strings.ToLower(findingType), "_") {
		if part == "" {
			continue
		}
		buf.WriteString(strings.ToUpper(part[:1]))
		buf.WriteString(part[1:])
	}
	return buf.String()
}

func level(sev finding.Severity) string {
	switch sev {
	case finding.CriticalSeverity, finding.HighSeverity:
		return "error"
	case finding.MediumSeverity:
		return "warning"
	default:
		return "note"
	}
}

// securitySeverityValue GitHub security-severity property uses a numeric severity value to determine whether things
// are critical, high, etc.
func securitySeverityValue(sev finding.Severity) string {
	switch sev {
	case finding.CriticalSeverity:
		return "9.0"
	case finding.HighSeverity:
		return "7.0"
	case finding.MediumSeverity:
		return "4.0"
	case finding.LowSeverity:
		return "1.0"
	}
	return "0.0"
}

func (pres *Presenter) sarifResults() []*sarif.Result {
	out := make([]*sarif.Result, 0) // make sure we have at least an empty array
	for _, f := range pres.document.Findings {
		message := f.Description
		if f.Evidence != "" {
			message = fmt.Sprintf("%s (%s)", message, f.Evidence)
		}
		out = append(out, &sarif.Result{
			RuleID:    sp(f.RuleID),
			Level:     sp(level(f.Severity)),
			Message:   sarif.Message{Text: &message},
			Locations: locations(f),
			PartialFingerprints: map[string]interface{}{
				fingerprintKey: fingerprintID(f),
			},
		})
	}
	return out
}

func fingerprintID(f finding.Finding) string {
	if f.FingerprintID != "" {
		return f.FingerprintID
	}
	return f.Fingerprint().ID()
}

func locations(f finding.Finding) []*sarif.Location {
	if f.File == "" {
		return nil
	}
	physical := &sarif.PhysicalLocation{
		ArtifactLocation: &sarif.ArtifactLocation{
			URI: sp(f.File),
		},
	}
	if f.Line > 0 {
		physical.Region = &sarif.Region{StartLine: ip(f.Line)}
	}
	return []*sarif.Location{{PhysicalLocation: physical}}
}

// ip returns an int pointer based on the provided value
func ip(i int) *int {
	return &i
}

// sp returns a string pointer based on the provided value
func sp(sarif string) *string {
	return &sarif
}
