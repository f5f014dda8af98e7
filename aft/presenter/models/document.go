package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// maxListedPermissions bounds the permission listing of human readable reports.
const maxListedPermissions = 20

// Document is the single source of data for every report format.
type Document struct {
	ID              string                   `json:"id"`
	Timestamp       time.Time                `json:"timestamp"`
	Descriptor      Descriptor               `json:"descriptor"`
	Project         string                   `json:"project"`
	Info            *apk.Info                `json:"info,omitempty"`
	Summary         finding.Summary          `json:"summary"`
	RiskScore       int                      `json:"riskScore"`
	Findings        []finding.Finding        `json:"findings"`
	BySeverity      []SeverityGroup          `json:"-"`
	Ignored         []finding.IgnoredFinding `json:"ignoredFindings"`
	Permissions     Permissions              `json:"permissions"`
	Components      []analysis.ComponentInfo `json:"components"`
	FilesAnalyzed   int                      `json:"filesAnalyzed"`
	Recommendations []string                 `json:"recommendations"`
	Issues          []string                 `json:"issues"`
}

// SeverityGroup holds the findings of a single severity, in report order.
type SeverityGroup struct {
	Severity finding.Severity
	Label    string
	Findings []finding.Finding
}

type Permissions struct {
	Total        int      `json:"total"`
	All          []string `json:"all"`
	Listed       []string `json:"-"`
	Remaining    int      `json:"-"`
	Dangerous    []string `json:"dangerous"`
	Unused       []string `json:"unused"`
	UsageChecked bool     `json:"usageChecked"`
}

// NewDocument creates a new report Document from the result of an analysis.
func NewDocument(result analysis.Result, descriptor Descriptor) (Document, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Document{}, fmt.Errorf("unable to generate report id: %w", err)
	}

	findings := finding.WithFingerprintIDs(result.Findings)
	ignored := make([]finding.IgnoredFinding, 0, len(result.Ignored))
	for _, ig := range result.Ignored {
		ig.FingerprintID = ig.Fingerprint().ID()
		ignored = append(ignored, ig)
	}
	issues := result.Issues
	if issues == nil {
		issues = []string{}
	}
	components := result.Manifest.Components
	if components == nil {
		components = []analysis.ComponentInfo{}
	}

	return Document{
		ID:              id.String(),
		Timestamp:       time.Now(),
		Descriptor:      descriptor,
		Project:         result.Project,
		Info:            result.Info,
		Summary:         result.Summary,
		RiskScore:       result.RiskScore,
		Findings:        findings,
		BySeverity:      groupBySeverity(findings),
		Ignored:         ignored,
		Permissions:     newPermissions(result.Permission),
		Components:      components,
		FilesAnalyzed:   result.FilesAnalyzed,
		Recommendations: GeneralRecommendations,
		Issues:          issues,
	}, nil
}

func groupBySeverity(findings []finding.Finding) []SeverityGroup {
	var groups []SeverityGroup
	for _, sev := range finding.AllSeverities {
		var members []finding.Finding
		for _, f := range findings {
			if f.Severity == sev {
				members = append(members, f)
			}
		}
		if len(members) == 0 {
			continue
		}
		groups = append(groups, SeverityGroup{
			Severity: sev,
			Label:    SeverityLabel(sev),
			Findings: members,
		})
	}
	return groups
}

func newPermissions(p analysis.PermissionResult) Permissions {
	all := p.Permissions
	if all == nil {
		all = []string{}
	}
	listed := all
	if len(listed) > maxListedPermissions {
		listed = listed[:maxListedPermissions]
	}
	dangerous := p.Dangerous
	if dangerous == nil {
		dangerous = []string{}
	}
	unused := p.Unused
	if unused == nil {
		unused = []string{}
	}
	return Permissions{
		Total:        len(all),
		All:          all,
		Listed:       listed,
		Remaining:    len(all) - len(listed),
		Dangerous:    dangerous,
		Unused:       unused,
		UsageChecked: p.UsageChecked,
	}
}

// SeverityLabel is the heading used for a severity in human readable reports.
func SeverityLabel(sev finding.Severity) string {
	switch sev {
	case finding.CriticalSeverity:
		return "CRITICAL - Critical risk"
	case finding.HighSeverity:
		return "HIGH - High risk"
	case finding.MediumSeverity:
		return "MEDIUM - Medium risk"
	case finding.LowSeverity:
		return "LOW - Low risk"
	case finding.InfoSeverity:
		return "INFO - Informational"
	default:
		return sev.String()
	}
}
