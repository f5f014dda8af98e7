package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/rebuild"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/store"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/config"
)

func withAppConfig(t *testing.T, cfg *config.Application) {
	t.Helper()
	previous := appConfig
	appConfig = cfg
	t.Cleanup(func() { appConfig = previous })
}

func TestCheckSeverityThreshold(t *testing.T) {
	result := &analysis.Result{
		Findings: []finding.Finding{
			{RuleID: "AFT-MAN-002", Severity: finding.MediumSeverity},
		},
	}

	tests := []struct {
		name      string
		threshold *finding.Severity
		wantErr   bool
	}{
		{name: "no threshold"},
		{name: "below threshold", threshold: severityPtr(finding.HighSeverity)},
		{name: "at threshold", threshold: severityPtr(finding.MediumSeverity), wantErr: true},
		{name: "above threshold", threshold: severityPtr(finding.LowSeverity), wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &config.Application{}
			cfg.Analysis.FailOnSeverity = test.threshold
			withAppConfig(t, cfg)

			err := checkSeverityThreshold(result)
			if test.wantErr {
				assert.ErrorIs(t, err, afterr.ErrAboveSeverityThreshold)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func severityPtr(s finding.Severity) *finding.Severity {
	return &s
}

func TestPatchSummary(t *testing.T) {
	result := &rebuild.PatchResult{
		DryRun: true,
		Changes: []rebuild.FileChange{
			{Path: "smali/smali/a/A.smali", Replacements: 2, Diff: "--- a/A\n"},
			{Path: "smali/smali/b/B.smali", Replacements: 1, Diff: "--- a/B\n"},
		},
	}

	assert.Equal(t, "Would patch 2 files (3 replacements)", patchSummary(result))
	assert.Equal(t, "--- a/A\n--- a/B\n", patchDiff(result))

	result.DryRun = false
	assert.Equal(t, "Patched 2 files (3 replacements)", patchSummary(result))
}

func TestSignedMessage(t *testing.T) {
	assert.Equal(t,
		"Signed APK written to out/app-signed.apk (apksigner, signature scheme v2, zip-aligned)",
		signedMessage(&rebuild.SignResult{
			Path:      "out/app-signed.apk",
			Signer:    tool.ApksignerName,
			Aligned:   true,
			Signature: &apk.Signature{Scheme: 2},
		}),
	)
	assert.Equal(t,
		"Signed APK written to app-signed.apk (jarsigner)",
		signedMessage(&rebuild.SignResult{Path: "app-signed.apk", Signer: tool.JarsignerName}),
	)
}

func TestBindFlags_UnknownFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("deep", false, "")

	require.NoError(t, bindFlags(flags, map[string]string{"analysis.deep": "deep"}))
	require.ErrorContains(t, bindFlags(flags, map[string]string{"analysis.patterns": "patterns"}), `no flag "patterns"`)
}

func TestValidateListFormat(t *testing.T) {
	assert.NoError(t, validateListFormat("table"))
	assert.NoError(t, validateListFormat("json"))
	assert.Error(t, validateListFormat("yaml"))
}

func TestSeverityOptions(t *testing.T) {
	assert.Equal(t, "critical, high, medium, low, info", severityOptions())
}

func TestRenderToolTable(t *testing.T) {
	var buf bytes.Buffer
	renderToolTable(&buf, []tool.Status{
		{Name: "apktool", Path: "/usr/bin/apktool", Found: true, Version: "2.9.3", MinVersion: "2.4.0", MeetsMinimum: true},
		{Name: "jadx", Found: true, Version: "1.1.0", MinVersion: "1.2.0"},
		{Name: "zipalign"},
	})

	out := stripansi.Strip(buf.String())
	assert.Contains(t, out, "TOOL")
	assert.Regexp(t, `apktool\s+yes\s+2\.9\.3\s+2\.4\.0\s+/usr/bin/apktool`, out)
	assert.Regexp(t, `jadx\s+yes \(too old\)\s+1\.1\.0`, out)
	assert.Regexp(t, `zipalign\s+no`, out)
}

func TestRenderHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	renderHistoryTable(&buf, []store.AnalysisRecord{
		{
			CreatedAt:  time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local),
			Package:    "com.example.app",
			Version:    "1.2.0",
			RiskScore:  42,
			Total:      6,
			Critical:   1,
			High:       2,
			Medium:     3,
			ProjectDir: "output/app",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "2024-03-01 10:30")
	assert.Regexp(t, `com\.example\.app\s+1\.2\.0\s+42\s+6\s+1/2/3/0/0\s+output/app`, out)
}
