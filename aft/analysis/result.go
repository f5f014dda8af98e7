package analysis

import (
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// Result is everything learned about a project by a single analysis run.
type Result struct {
	Project    string                   `json:"project"`
	Info       *apk.Info                `json:"info,omitempty"`
	Manifest   ManifestResult           `json:"manifest"`
	Code       CodeResult               `json:"code"`
	Permission PermissionResult         `json:"permissions"`
	Resource   ResourceResult           `json:"resources"`
	Findings   []finding.Finding        `json:"findings"`
	Ignored    []finding.IgnoredFinding `json:"ignored,omitempty"`
	RiskScore  int                      `json:"riskScore"`
	Summary    finding.Summary          `json:"summary"`
	// FilesAnalyzed counts the source files that were scanned.
	FilesAnalyzed int      `json:"filesAnalyzed"`
	Issues        []string `json:"issues,omitempty"`
}

type ManifestResult struct {
	Path        string            `json:"path,omitempty"`
	Error       string            `json:"error,omitempty"`
	Package     string            `json:"package,omitempty"`
	MinSDK      int               `json:"minSdk,omitempty"`
	TargetSDK   int               `json:"targetSdk,omitempty"`
	Permissions []string          `json:"permissions"`
	Components  []ComponentInfo   `json:"components"`
	Findings    []finding.Finding `json:"findings"`
	Issues      []string          `json:"issues,omitempty"`

	networkSecurityConfig string
}

// ComponentInfo summarizes a declared activity, service, receiver or provider.
type ComponentInfo struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Exported      bool     `json:"exported"`
	Implicit      bool     `json:"implicitlyExported,omitempty"`
	Permission    string   `json:"permission,omitempty"`
	IntentFilters int      `json:"intentFilters"`
	Actions       []string `json:"actions,omitempty"`
}

type CodeResult struct {
	Roots         []string          `json:"roots"`
	FilesAnalyzed int               `json:"filesAnalyzed"`
	FilesSkipped  int               `json:"filesSkipped"`
	Findings      []finding.Finding `json:"findings"`
	Issues        []string          `json:"issues,omitempty"`
}

type PermissionResult struct {
	Permissions []string `json:"permissions"`
	Dangerous   []string `json:"dangerous"`
	Unused      []string `json:"unused"`
	// UsageChecked is false when no decompiled java sources exist to look for permission usage in.
	UsageChecked bool              `json:"usageChecked"`
	Findings     []finding.Finding `json:"findings"`
}

type ResourceResult struct {
	FilesAnalyzed int               `json:"filesAnalyzed"`
	Findings      []finding.Finding `json:"findings"`
	Issues        []string          `json:"issues,omitempty"`
}
