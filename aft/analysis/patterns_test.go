package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

func TestDefaultPatterns(t *testing.T) {
	p, err := DefaultPatterns()
	require.NoError(t, err)

	assert.NotEmpty(t, p.LineRules)
	assert.NotEmpty(t, p.FileRules)
	assert.Contains(t, p.DangerousPermissions, "android.permission.READ_SMS")
	assert.Contains(t, p.PermissionHints, "android.permission.INTERNET")

	for _, r := range p.LineRules {
		assert.NotNil(t, r.pattern, r.ID)
		assert.NotEqual(t, finding.UnknownSeverity, r.severity, r.ID)
	}
	for _, r := range p.FileRules {
		assert.NotEmpty(t, r.Anchor, r.ID)
	}
}

func TestLineRulePatterns(t *testing.T) {
	p, err := DefaultPatterns()
	require.NoError(t, err)

	byID := make(map[string]LineRule)
	for _, r := range p.LineRules {
		byID[r.ID] = r
	}

	tests := []struct {
		rule    string
		line    string
		matches bool
	}{
		{rule: "AFT-CODE-001", line: `String PASSWORD = 'admin';`, matches: true},
		{rule: "AFT-CODE-001", line: `String password = getPassword();`, matches: false},
		{rule: "AFT-CODE-002", line: `apiKey="abc"`, matches: true},
		{rule: "AFT-CODE-002", line: `API_KEY = "abc"`, matches: true},
		{rule: "AFT-CODE-009", line: `Cipher.getInstance("AES/ECB/PKCS5Padding")`, matches: true},
		{rule: "AFT-CODE-009", line: `Cipher.getInstance("AES/GCM/NoPadding")`, matches: false},
		{rule: "AFT-CODE-010", line: `Cipher.getInstance("AES")`, matches: true},
		{rule: "AFT-CODE-012", line: `MessageDigest.getInstance("MD5")`, matches: true},
		{rule: "AFT-CODE-012", line: `MessageDigest.getInstance("SHA-256")`, matches: false},
		{rule: "AFT-CODE-015", line: `openFileOutput("f", MODE_WORLD_READABLE)`, matches: true},
		{rule: "AFT-CODE-016", line: `db.rawQuery("SELECT * FROM users WHERE id=" + id, null);`, matches: true},
		{rule: "AFT-CODE-016", line: `db.rawQuery("SELECT * FROM users WHERE id=?", args);`, matches: false},
	}

	for _, test := range tests {
		t.Run(test.rule+" "+test.line, func(t *testing.T) {
			r, ok := byID[test.rule]
			require.True(t, ok)
			assert.Equal(t, test.matches, r.pattern.MatchString(test.line))
		})
	}
}

func TestCleartextURLExclusions(t *testing.T) {
	p, err := DefaultPatterns()
	require.NoError(t, err)

	var rule LineRule
	for _, r := range p.LineRules {
		if r.ID == "AFT-CODE-007" {
			rule = r
		}
	}
	require.NotNil(t, rule.exclude)

	f := sourceFile{rel: "A.java", lang: Java}
	s := &codeScanner{patterns: &Patterns{LineRules: []LineRule{rule}}}

	assert.Len(t, s.match(f, `String ns = "http://schemas.android.com/apk/res/android";`), 0)
	assert.Len(t, s.match(f, `String u = "http://evil.example.com";`), 1)
}

func TestParsePatterns_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown severity",
			doc:  "line-rules:\n  - id: X-1\n    severity: SCARY\n    pattern: foo\n",
		},
		{
			name: "bad regex",
			doc:  "line-rules:\n  - id: X-1\n    severity: LOW\n    pattern: 'foo('\n",
		},
		{
			name: "duplicate ids",
			doc:  "line-rules:\n  - id: X-1\n    severity: LOW\n    pattern: a\n  - id: X-1\n    severity: LOW\n    pattern: b\n",
		},
		{
			name: "unknown language",
			doc:  "line-rules:\n  - id: X-1\n    severity: LOW\n    pattern: a\n    languages: [kotlin]\n",
		},
		{
			name: "file rule without tokens",
			doc:  "file-rules:\n  - id: X-2\n    severity: LOW\n",
		},
		{
			name: "unknown field",
			doc:  "line-rule:\n  - id: X-1\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParsePatterns([]byte(test.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPatterns_ReplacesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	doc := `line-rules:
  - id: CUSTOM-1
    type: INTERNAL_HOST
    severity: HIGH
    languages: [java]
    paths: ["sources/com/example/**"]
    pattern: 'corp\.internal'
    description: "Internal host name"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	a, err := New(Config{PatternsFile: path})
	require.NoError(t, err)
	require.Len(t, a.patterns.LineRules, 1)
	assert.Empty(t, a.patterns.FileRules)

	ws := newTestProject(t, map[string]string{
		"java/sources/com/example/A.java": `String h = "db.corp.internal";`,
		"java/sources/org/other/B.java":   `String h = "db.corp.internal";`,
	})
	result := analyze(t, ws, Config{PatternsFile: path})

	require.Len(t, result.Code.Findings, 1)
	f := result.Code.Findings[0]
	assert.Equal(t, "CUSTOM-1", f.RuleID)
	assert.Equal(t, "sources/com/example/A.java", f.File)
	assert.Equal(t, 1, f.Line)
}

func TestLoadPatterns_MissingFile(t *testing.T) {
	_, err := New(Config{PatternsFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}
