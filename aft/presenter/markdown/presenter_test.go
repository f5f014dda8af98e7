package markdown

import (
	"bytes"
	"flag"
	"testing"

	"github.com/anchore/go-testutils"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
)

var update = flag.Bool("update", false, "update the *.golden files for markdown presenters")

func TestMarkdownPresenter_Snapshot(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, NewPresenter(internal.GenerateDocument()).Present(&buffer))

	actual := buffer.Bytes()
	if *update {
		testutils.UpdateGoldenFileContents(t, actual)
	}

	var expected = testutils.GetGoldenFileContents(t)

	if !bytes.Equal(expected, actual) {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(expected), string(actual), true)
		t.Errorf("mismatched output:\n%s", dmp.DiffPrettyText(diffs))
	}
}

func TestPresenter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPresenter(internal.GenerateDocument()).Present(&buf))
	out := buf.String()

	for _, expected := range []string{
		"# Android Application Security Report",
		"Generated: 2024-03-01 10:30:00",
		"**Risk score:** 11/100",
		"**Total findings:** 2",
		"  - **High:** 1",
		"- **Package:** com.example.app",
		"- **Version:** 1.2.3 (42)",
		"### HIGH - High risk",
		"### MEDIUM - Medium risk",
		"#### 1. Hardcoded password",
		"**File:** `sources/com/example/app/Net.java`",
		"**Line:** 4",
		"```java\nprivate static final String password = \"hunter22\";\n```",
		// text output is not escaped
		"Application data can be backed up <allowBackup>",
		"**Total permissions:** 2",
		"- `android.permission.CAMERA`",
		"**Dangerous permissions:** android.permission.CAMERA",
		"## Ignored Findings",
		"10. Document: document every security control in place",
		"## 6. Conclusion",
	} {
		assert.Contains(t, out, expected)
	}
	assert.NotContains(t, out, "more\n")
}

func TestPresenter_Empty(t *testing.T) {
	doc, err := models.NewDocument(analysis.Result{Project: "/out/empty"}, models.Descriptor{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPresenter(doc).Present(&buf))

	assert.Contains(t, buf.String(), "No security issues were found.")
	assert.Contains(t, buf.String(), "No application metadata recorded for /out/empty.")
	assert.NotContains(t, buf.String(), "## Ignored Findings")
}
