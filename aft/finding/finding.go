package finding

import "fmt"

type Category string

const (
	ManifestCategory   Category = "manifest"
	CodeCategory       Category = "code"
	PermissionCategory Category = "permission"
	ResourceCategory   Category = "resource"
)

// Finding is a single security issue discovered while analyzing a project.
type Finding struct {
	RuleID         string   `json:"ruleId"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	File           string   `json:"file,omitempty"`
	Line           int      `json:"line,omitempty"`
	Snippet        string   `json:"snippet,omitempty"`
	Evidence       string   `json:"evidence,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	CWE            string   `json:"cwe,omitempty"`
	// FingerprintID is the stable hash of Fingerprint(), filled in for reports (see WithFingerprintIDs).
	FingerprintID string `json:"fingerprint,omitempty"`
}

func (f Finding) String() string {
	if f.File == "" {
		return fmt.Sprintf("Finding(rule=%q severity=%s type=%q)", f.RuleID, f.Severity, f.Type)
	}
	return fmt.Sprintf("Finding(rule=%q severity=%s type=%q file=%q line=%d)", f.RuleID, f.Severity, f.Type, f.File, f.Line)
}

// Location renders "file:line" (or only the file when the line is unknown).
func (f Finding) Location() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

func (f Finding) Fingerprint() Fingerprint {
	return Fingerprint{
		RuleID:      f.RuleID,
		Type:        f.Type,
		File:        f.File,
		Line:        f.Line,
		Description: f.Description,
	}
}
