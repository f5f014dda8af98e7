package html

import (
	"bytes"
	"flag"
	"testing"

	"github.com/anchore/go-testutils"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
)

var update = flag.Bool("update", false, "update the *.golden files for html presenters")

func TestHTMLPresenter_Snapshot(t *testing.T) {
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
		"<title>Security Report - com.example.app</title>",
		`<span class="score">11/100</span>`,
		"<h3>HIGH - High risk</h3>",
		`<div class="finding severity-high">`,
		"<h4>1. Hardcoded password</h4>",
		`<code class="language-java">`,
		// content is escaped
		"Application data can be backed up &lt;allowBackup&gt;",
		"private static final String password = &#34;hunter22&#34;;",
		"<li><code>android.permission.INTERNET</code></li>",
		"<h2>Ignored Findings</h2>",
	} {
		assert.Contains(t, out, expected)
	}
	assert.NotContains(t, out, "<allowBackup>")
}
