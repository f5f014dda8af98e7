package internal

import (
	"time"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
)

// GenerateDocument returns a deterministic document for exercising presenters.
func GenerateDocument() models.Document {
	findings := []finding.Finding{
		{
			RuleID:         "AFT-CODE-001",
			Type:           "SENSITIVE_DATA",
			Severity:       finding.HighSeverity,
			Category:       finding.CodeCategory,
			Description:    "Hardcoded password",
			File:           "sources/com/example/app/Net.java",
			Line:           4,
			Snippet:        `private static final String password = "hunter22";`,
			Recommendation: "Never embed credentials in the application",
			CWE:            "CWE-798",
		},
		{
			RuleID:         "AFT-MAN-002",
			Type:           "BACKUP_ENABLED",
			Severity:       finding.MediumSeverity,
			Category:       finding.ManifestCategory,
			Description:    "Application data can be backed up <allowBackup>",
			File:           "AndroidManifest.xml",
			Recommendation: "Set android:allowBackup=\"false\"",
			CWE:            "CWE-530",
		},
	}

	result := analysis.Result{
		Project: "/out/app",
		Info: &apk.Info{
			PackageName: "com.example.app",
			VersionName: "1.2.3",
			VersionCode: 42,
			MinSDK:      21,
			TargetSDK:   33,
			SHA256:      "0f343b0931126a20f133d67c2b018a3b5c3b5f1b9b7ae1a3b3c3e3c3a3b3c3d3",
		},
		Findings: findings,
		Ignored: []finding.IgnoredFinding{
			{
				Finding:            finding.Finding{RuleID: "AFT-PERM-002", Type: "UNUSED_PERMISSION", Severity: finding.LowSeverity, Description: "Permission appears unused: android.permission.CAMERA"},
				AppliedIgnoreRules: []finding.IgnoreRule{{Type: "UNUSED_PERMISSION"}},
			},
		},
		Summary:   finding.NewSummary(findings),
		RiskScore: finding.RiskScore(findings),
		Permission: analysis.PermissionResult{
			Permissions:  []string{"android.permission.INTERNET", "android.permission.CAMERA"},
			Dangerous:    []string{"android.permission.CAMERA"},
			UsageChecked: true,
		},
		FilesAnalyzed: 12,
	}

	doc, err := models.NewDocument(result, models.Descriptor{Name: "aft", Version: "0.1.0"})
	if err != nil {
		panic(err)
	}
	doc.ID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	doc.Timestamp = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return doc
}
