package aft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-progress"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/disassemble"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
)

const debuggableManifest = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example.app">
    <uses-sdk android:minSdkVersion="21" android:targetSdkVersion="33"/>
    <application android:debuggable="true" android:label="Example"/>
</manifest>
`

type fakeExtractor struct {
	fs      afero.Fs
	apkPath string
	outDir  string
	cfg     disassemble.Config
	err     error
}

func (f *fakeExtractor) Disassemble(_ context.Context, apkPath, outDir string, cfg disassemble.Config) (*workspace.Workspace, error) {
	f.apkPath, f.outDir, f.cfg = apkPath, outDir, cfg
	if f.err != nil {
		return nil, f.err
	}
	ws, err := workspace.Create(f.fs, outDir)
	if err != nil {
		return nil, err
	}
	if err := afero.WriteFile(f.fs, ws.ManifestPath(), []byte(debuggableManifest), 0644); err != nil {
		return nil, err
	}
	if err := afero.WriteFile(f.fs, ws.Path(workspace.SmaliDir, "apktool.yml"), []byte("version: 2.9.3"), 0644); err != nil {
		return nil, err
	}
	return ws, nil
}

type fakeGetter struct {
	fs  afero.Fs
	src string
	dst string
}

func (g *fakeGetter) GetFile(_ context.Context, dst, src string, _ ...*progress.Manual) error {
	g.src, g.dst = src, dst
	return afero.WriteFile(g.fs, dst, []byte("PK"), 0644)
}

func newTestToolkit(fs afero.Fs, ext extractor, getter *fakeGetter) *Toolkit {
	tk := &Toolkit{fs: fs, extractor: ext}
	if getter != nil {
		tk.getter = getter
	}
	return tk
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("output", "app"), DefaultOutputDir("/some/where/app.apk"))
	assert.Equal(t, filepath.Join("output", "bank-release"), DefaultOutputDir("https://example.com/dl/bank-release.apk?x=1"))
	assert.Equal(t, filepath.Join("output", "app"), DefaultOutputDir("https://example.com/"))
	assert.Equal(t, filepath.Join("output", "signed"), DefaultOutputDir("s3::https://s3.amazonaws.com/bucket/signed.apk"))
}

func TestToolkit_Extract_Local(t *testing.T) {
	fs := afero.NewMemMapFs()
	ext := &fakeExtractor{fs: fs}
	tk := newTestToolkit(fs, ext, nil)

	ws, err := tk.Extract(context.Background(), "/apks/app.apk", "", disassemble.Config{})
	require.NoError(t, err)

	assert.Equal(t, "/apks/app.apk", ext.apkPath)
	assert.Equal(t, filepath.Join("output", "app"), ws.Root)
}

func TestToolkit_Extract_Remote(t *testing.T) {
	fs := afero.NewMemMapFs()
	ext := &fakeExtractor{fs: fs}
	getter := &fakeGetter{fs: fs}
	tk := newTestToolkit(fs, ext, getter)

	_, err := tk.Extract(context.Background(), "https://example.com/dl/app.apk", "/out", disassemble.Config{})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/dl/app.apk", getter.src)
	assert.Equal(t, getter.dst, ext.apkPath)
	assert.Equal(t, "app.apk", filepath.Base(ext.apkPath))

	// the download is removed once extraction is done
	exists, err := afero.Exists(fs, getter.dst)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestToolkit_Extract_Digest(t *testing.T) {
	sum := sha256.Sum256([]byte("PK"))
	good := hex.EncodeToString(sum[:])

	tests := []struct {
		name    string
		digest  string
		wantErr string
	}{
		{name: "prefixed", digest: "sha256:" + good},
		{name: "bare hex", digest: strings.ToUpper(good)},
		{name: "mismatch", digest: "sha256:" + strings.Repeat("0", 64), wantErr: "digest mismatch"},
		{name: "unsupported", digest: "md5:abc", wantErr: "hasher not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			ext := &fakeExtractor{fs: fs}
			tk := newTestToolkit(fs, ext, &fakeGetter{fs: fs})

			_, err := tk.Extract(context.Background(), "https://example.com/app.apk", "/out", disassemble.Config{Digest: tt.digest})
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, ext.apkPath, "nothing should be extracted")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, ext.apkPath)
		})
	}
}

func TestToolkit_Extract_RemoteWithoutGetter(t *testing.T) {
	fs := afero.NewMemMapFs()
	tk := newTestToolkit(fs, &fakeExtractor{fs: fs}, nil)

	_, err := tk.Extract(context.Background(), "https://example.com/app.apk", "/out", disassemble.Config{})
	require.ErrorContains(t, err, "not supported without a getter")
}

func TestToolkit_Extract_Failure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))
	ext := &fakeExtractor{fs: fs, err: errors.New("apktool exploded")}
	tk := newTestToolkit(fs, ext, nil)

	_, err := tk.Extract(context.Background(), "app.apk", "/out", disassemble.Config{})
	require.ErrorContains(t, err, "apktool exploded")

	exists, err := afero.DirExists(fs, "/out")
	require.NoError(t, err)
	assert.False(t, exists, "empty output directory should be removed")
}

func TestToolkit_FullAnalysis(t *testing.T) {
	fs := afero.NewMemMapFs()
	ext := &fakeExtractor{fs: fs}
	tk := newTestToolkit(fs, ext, nil)

	reportCfg, err := presenter.ValidatedConfig([]string{"json"}, "", "")
	require.NoError(t, err)
	reportDir := t.TempDir()

	result, err := tk.FullAnalysis(context.Background(), "app.apk", FullAnalysisConfig{
		OutDir:    "/project",
		Report:    reportCfg,
		ReportDir: reportDir,
	})
	require.NoError(t, err)

	assert.True(t, ext.cfg.Decompile, "full analysis always decompiles")
	assert.Equal(t, "/project", result.ProjectDir)
	assert.GreaterOrEqual(t, result.Summary.High, 1)
	require.Len(t, result.ReportPaths, 1)
	assert.Equal(t, ".json", filepath.Ext(result.ReportPaths[0]))

	contents, err := os.ReadFile(result.ReportPaths[0])
	require.NoError(t, err)
	assert.Contains(t, string(contents), "AFT-MAN-001")
}

func TestToolkit_Analyze_NotAProject(t *testing.T) {
	fs := afero.NewMemMapFs()
	tk := newTestToolkit(fs, &fakeExtractor{fs: fs}, nil)

	_, err := tk.Analyze(context.Background(), "/nowhere", analysis.Config{})
	require.Error(t, err)
}

func TestToolkit_Patch(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := workspace.Create(fs, "/project")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, ws.Path(workspace.SmaliDir, "apktool.yml"), []byte("version: 2.9.3"), 0644))
	smali := ws.Path(workspace.SmaliDir, "smali", "com", "example", "Check.smali")
	require.NoError(t, afero.WriteFile(fs, smali, []byte("const/4 v0, 0x1\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/patches.yaml", []byte(`patches:
  - file: "smali/smali/**/Check.smali"
    find: "const/4 v0, 0x1"
    replace: "const/4 v0, 0x0"
`), 0644))

	tk := newTestToolkit(fs, &fakeExtractor{fs: fs}, nil)

	result, err := tk.Patch("/project", "/patches.yaml", true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	require.Len(t, result.Changes, 1)

	contents, err := afero.ReadFile(fs, smali)
	require.NoError(t, err)
	assert.Equal(t, "const/4 v0, 0x1\n", string(contents), "dry run must not write")

	_, err = tk.Patch("/project", "/patches.yaml", false)
	require.NoError(t, err)
	contents, err = afero.ReadFile(fs, smali)
	require.NoError(t, err)
	assert.Equal(t, "const/4 v0, 0x0\n", string(contents))
}
