package finding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
	}{
		{"CRITICAL", CriticalSeverity},
		{"high", HighSeverity},
		{" Medium ", MediumSeverity},
		{"low", LowSeverity},
		{"info", InfoSeverity},
		{"", UnknownSeverity},
		{"bogus", UnknownSeverity},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, ParseSeverity(test.input))
		})
	}
}

func TestSeverity_RoundTripText(t *testing.T) {
	for _, s := range AllSeverities {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var actual Severity
		require.NoError(t, actual.UnmarshalText(text))
		assert.Equal(t, s, actual)
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name       string
		severities []Severity
		expected   int
	}{
		{
			name:     "no findings",
			expected: 0,
		},
		{
			name:       "one of each",
			severities: []Severity{CriticalSeverity, HighSeverity, MediumSeverity, LowSeverity, InfoSeverity},
			expected:   24,
		},
		{
			name:       "capped",
			severities: []Severity{CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, CriticalSeverity, HighSeverity},
			expected:   100,
		},
		{
			name:       "unknown weighs like info",
			severities: []Severity{UnknownSeverity, UnknownSeverity},
			expected:   2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var findings []Finding
			for _, s := range test.severities {
				findings = append(findings, Finding{Severity: s})
			}
			assert.Equal(t, test.expected, RiskScore(findings))
		})
	}
}

func TestFindings_DeduplicatesByFingerprint(t *testing.T) {
	f := Finding{RuleID: "hardcoded-password", Type: "Sensitive Data", Severity: HighSeverity, File: "a/B.java", Line: 3, Snippet: "password = \"x\""}
	dup := f
	dup.Snippet = "different snippet, same place"

	findings := NewFindings(f)
	assert.Equal(t, 0, findings.Add(dup))
	assert.Equal(t, 1, findings.Count())

	other := f
	other.Line = 4
	assert.Equal(t, 1, findings.Add(other))
	assert.Equal(t, 2, findings.Count())
}

func TestFindings_Sorted(t *testing.T) {
	findings := NewFindings(
		Finding{RuleID: "r1", Severity: LowSeverity, Category: CodeCategory, File: "b.java", Line: 1},
		Finding{RuleID: "r2", Severity: CriticalSeverity, Category: ManifestCategory},
		Finding{RuleID: "r3", Severity: HighSeverity, Category: CodeCategory, File: "a.java", Line: 20},
		Finding{RuleID: "r4", Severity: HighSeverity, Category: CodeCategory, File: "a.java", Line: 5},
		Finding{RuleID: "r5", Severity: HighSeverity, Category: ManifestCategory},
	)

	var actual []string
	for _, f := range findings.Sorted() {
		actual = append(actual, f.RuleID)
	}

	expected := []string{"r2", "r4", "r3", "r5", "r1"}
	if d := cmp.Diff(expected, actual); d != "" {
		t.Errorf("unexpected order (-want +got):\n%s", d)
	}
}

func TestFindings_CountAtOrAbove(t *testing.T) {
	findings := NewFindings(
		Finding{RuleID: "a", Severity: LowSeverity},
		Finding{RuleID: "b", Severity: MediumSeverity},
		Finding{RuleID: "c", Severity: HighSeverity},
	)

	assert.Equal(t, 3, findings.CountAtOrAbove(LowSeverity))
	assert.Equal(t, 2, findings.CountAtOrAbove(MediumSeverity))
	assert.Equal(t, 0, findings.CountAtOrAbove(CriticalSeverity))
	assert.Len(t, findings.BySeverity()[HighSeverity], 1)
}

func TestNewSummary(t *testing.T) {
	summary := NewSummary([]Finding{
		{Severity: CriticalSeverity},
		{Severity: HighSeverity},
		{Severity: HighSeverity},
		{Severity: LowSeverity},
		{Severity: InfoSeverity},
	})

	assert.Equal(t, Summary{
		Total:     5,
		Critical:  1,
		High:      2,
		Low:       1,
		Info:      1,
		RiskScore: 27,
	}, summary)
	assert.Equal(t, 2, summary.Count(HighSeverity))
}

func TestFingerprint_ID(t *testing.T) {
	a := Finding{RuleID: "r", File: "x", Line: 1}.Fingerprint()
	b := Finding{RuleID: "r", File: "x", Line: 1, Snippet: "ignored"}.Fingerprint()
	c := Finding{RuleID: "r", File: "x", Line: 2}.Fingerprint()

	assert.NotEmpty(t, a.ID())
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestWithFingerprintIDs(t *testing.T) {
	findings := []Finding{
		{RuleID: "r", File: "x", Line: 1},
		{RuleID: "r", File: "x", Line: 2},
	}

	actual := WithFingerprintIDs(findings)
	require.Len(t, actual, 2)
	assert.Equal(t, findings[0].Fingerprint().ID(), actual[0].FingerprintID)
	assert.Equal(t, findings[1].Fingerprint().ID(), actual[1].FingerprintID)
	assert.Empty(t, findings[0].FingerprintID, "the input must not be modified")

	// the reported ID does not feed back into the fingerprint
	assert.Equal(t, actual[0].Fingerprint(), findings[0].Fingerprint())

	assert.NotNil(t, WithFingerprintIDs(nil))
}
