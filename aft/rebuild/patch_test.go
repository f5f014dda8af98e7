package rebuild

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
)

const checkSmali = `.method public isRooted()Z
    .locals 1
    const/4 v0, 0x1
    return v0
.end method
`

func patchProject(t *testing.T) *workspace.Workspace {
	fs := afero.NewMemMapFs()
	ws, err := workspace.Create(fs, "/project")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/project/smali/smali/com/example/Check.smali", []byte(checkSmali), 0644))
	require.NoError(t, afero.WriteFile(fs, "/project/smali/res/values/strings.xml", []byte(`<string name="url">http://api.example.com</string>`), 0644))
	// never patched
	require.NoError(t, afero.WriteFile(fs, "/project/original/app.apk", []byte("const/4 v0, 0x1"), 0644))
	return ws
}

func mustParse(t *testing.T, doc string) *PatchSet {
	set, err := ParsePatchSet([]byte(doc))
	require.NoError(t, err)
	return set
}

func TestParsePatchSet_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"empty", "patches: []", "no patches"},
		{"unknown field", "patches:\n  - file: a\n    find: b\n    with: c", "unable to parse"},
		{"missing file", "patches:\n  - find: b", "file is required"},
		{"missing find", "patches:\n  - file: a", "find is required"},
		{"bad glob", "patches:\n  - file: '[a'\n    find: b", "bad file glob"},
		{"bad regex", "patches:\n  - file: a\n    find: '(['\n    regex: true", "bad regex"},
		{"negative count", "patches:\n  - file: a\n    find: b\n    count: -1", "count must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatchSet([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPatch(t *testing.T) {
	ws := patchProject(t)
	set := mustParse(t, `
patches:
  - file: "smali/**/*.smali"
    find: "const/4 v0, 0x1"
    replace: "const/4 v0, 0x0"
    count: 1
  - file: "smali/res/values/strings.xml"
    find: 'http://([a-z.]+)'
    replace: 'https://$1'
    regex: true
`)

	result, err := Patch(ws, set, false)
	require.NoError(t, err)

	assert.False(t, result.DryRun)
	assert.Equal(t, []string{"smali/res/values/strings.xml", "smali/smali/com/example/Check.smali"}, result.Files())
	assert.Equal(t, 1, result.Changes[1].Replacements)

	smali, err := afero.ReadFile(ws.Fs(), "/project/smali/smali/com/example/Check.smali")
	require.NoError(t, err)
	assert.Contains(t, string(smali), "const/4 v0, 0x0")

	strings, err := afero.ReadFile(ws.Fs(), "/project/smali/res/values/strings.xml")
	require.NoError(t, err)
	assert.Equal(t, `<string name="url">https://api.example.com</string>`, string(strings))

	apk, err := afero.ReadFile(ws.Fs(), filepath.Join("/project", workspace.OriginalDir, "app.apk"))
	require.NoError(t, err)
	assert.Equal(t, "const/4 v0, 0x1", string(apk))
}

func TestPatch_DryRun(t *testing.T) {
	ws := patchProject(t)
	set := mustParse(t, `
patches:
  - file: "smali/**/Check.smali"
    find: "const/4 v0, 0x1"
    replace: "const/4 v0, 0x0"
`)

	result, err := Patch(ws, set, true)
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)

	expected := "--- a/smali/smali/com/example/Check.smali\n" +
		"+++ b/smali/smali/com/example/Check.smali\n" +
		" .method public isRooted()Z\n" +
		"     .locals 1\n" +
		"-    const/4 v0, 0x1\n" +
		"+    const/4 v0, 0x0\n" +
		"     return v0\n" +
		" .end method\n"
	assert.Equal(t, expected, result.Changes[0].Diff)

	smali, err := afero.ReadFile(ws.Fs(), "/project/smali/smali/com/example/Check.smali")
	require.NoError(t, err)
	assert.Equal(t, checkSmali, string(smali))
}

func TestPatch_AllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "one patch does not match",
			doc: `
patches:
  - file: "smali/**/*.smali"
    find: "const/4 v0, 0x1"
    replace: "const/4 v0, 0x0"
  - file: "smali/**/*.smali"
    find: "invoke-static"
    replace: "nop"
`,
			wantErr: `patch 2 (smali/**/*.smali): "invoke-static" not found`,
		},
		{
			name: "count mismatch",
			doc: `
patches:
  - file: "smali/**"
    find: "v0"
    replace: "v1"
    count: 1
`,
			wantErr: "expected 1 replacements, found 2",
		},
		{
			name: "glob matches nothing",
			doc: `
patches:
  - file: "java/**/*.java"
    find: "x"
`,
			wantErr: "not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := patchProject(t)
			_, err := Patch(ws, mustParse(t, tt.doc), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			smali, err := afero.ReadFile(ws.Fs(), "/project/smali/smali/com/example/Check.smali")
			require.NoError(t, err)
			assert.Equal(t, checkSmali, string(smali))
		})
	}
}

func TestPatch_SequentialPatchesCompose(t *testing.T) {
	ws := patchProject(t)
	set := mustParse(t, `
patches:
  - file: "smali/**/Check.smali"
    find: "0x1"
    replace: "0x2"
  - file: "smali/**/Check.smali"
    find: "0x2"
    replace: "0x0"
`)
	result, err := Patch(ws, set, false)
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, 2, result.Changes[0].Replacements)

	smali, err := afero.ReadFile(ws.Fs(), "/project/smali/smali/com/example/Check.smali")
	require.NoError(t, err)
	assert.Contains(t, string(smali), "const/4 v0, 0x0")
}

func TestLoadPatchSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.yaml", []byte("patches:\n  - file: a\n    find: b\n"), 0644))

	set, err := LoadPatchSet(fs, "/p.yaml")
	require.NoError(t, err)
	assert.Equal(t, []Patch{{File: "a", Find: "b"}}, set.Patches)

	_, err = LoadPatchSet(fs, "/missing.yaml")
	require.Error(t, err)
}
