package workspace

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
)

func TestCreateAndOpen(t *testing.T) {
	fs := afero.NewMemMapFs()

	ws, err := Create(fs, "/out/app")
	require.NoError(t, err)
	for _, d := range Dirs {
		ok, err := afero.DirExists(fs, ws.Path(d))
		require.NoError(t, err)
		assert.True(t, ok, d)
	}

	// idempotent
	_, err = Create(fs, "/out/app")
	require.NoError(t, err)

	// the layout alone is not a project yet
	_, err = Open(fs, "/out/app")
	assert.ErrorIs(t, err, afterr.ErrNotAProject)

	require.NoError(t, ws.WriteInfo(apk.Info{PackageName: "com.example", VersionCode: 7, Permissions: []string{"android.permission.INTERNET"}}))

	opened, err := Open(fs, "/out/app")
	require.NoError(t, err)

	info, err := opened.ReadInfo()
	require.NoError(t, err)
	assert.Equal(t, "com.example", info.PackageName)
	assert.Equal(t, int32(7), info.VersionCode)
	assert.Equal(t, []string{"android.permission.INTERNET"}, info.Permissions)
}

func TestOpen_ApktoolOnlyProject(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/smali/apktool.yml", []byte("version: 2.9.3"), 0644))

	ws, err := Open(fs, "/proj")
	require.NoError(t, err)
	assert.True(t, ws.HasSmali())
	assert.False(t, ws.HasJava())

	_, err = ws.ReadInfo()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWorkspace_ApktoolSDK(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectedMin    int
		expectedTarget int
		wantErr        require.ErrorAssertionFunc
	}{
		{
			name: "quoted versions with the class tag",
			content: `!!brut.androlib.meta.MetaInfo
apkFileName: app.apk
sdkInfo:
  minSdkVersion: '21'
  targetSdkVersion: '33'
version: 2.4.1
`,
			expectedMin:    21,
			expectedTarget: 33,
		},
		{
			name: "plain versions",
			content: `version: 2.9.3
sdkInfo:
  minSdkVersion: 24
  targetSdkVersion: 34
`,
			expectedMin:    24,
			expectedTarget: 34,
		},
		{
			name:    "no sdk info",
			content: "version: 2.9.3",
		},
		{
			name:    "not yaml",
			content: "sdkInfo: [unterminated",
			wantErr: require.Error,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wantErr == nil {
				test.wantErr = require.NoError
			}
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/proj/smali/apktool.yml", []byte(test.content), 0644))
			ws, err := Open(fs, "/proj")
			require.NoError(t, err)

			minSDK, targetSDK, err := ws.ApktoolSDK()
			test.wantErr(t, err)
			assert.Equal(t, test.expectedMin, minSDK)
			assert.Equal(t, test.expectedTarget, targetSDK)
		})
	}
}

func TestWorkspace_ApktoolSDK_Missing(t *testing.T) {
	ws, err := Create(afero.NewMemMapFs(), "/proj")
	require.NoError(t, err)

	_, _, err = ws.ApktoolSDK()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(afero.NewMemMapFs(), "/nowhere")
	assert.ErrorIs(t, err, afterr.ErrNotAProject)
}

func TestManifestPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := Create(fs, "/p")
	require.NoError(t, err)

	// nothing present: the preferred location is returned
	assert.Equal(t, ws.Path(ManifestDir, ManifestFile), ws.ManifestPath())

	require.NoError(t, afero.WriteFile(fs, ws.Path(SmaliDir, ManifestFile), []byte("<manifest/>"), 0644))
	assert.Equal(t, ws.Path(SmaliDir, ManifestFile), ws.ManifestPath())

	require.NoError(t, afero.WriteFile(fs, ws.Path(ManifestDir, ManifestFile), []byte("<manifest/>"), 0644))
	assert.Equal(t, ws.Path(ManifestDir, ManifestFile), ws.ManifestPath())
}

func TestOriginalAPK(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := Create(fs, "/p")
	require.NoError(t, err)

	_, ok := ws.OriginalAPK()
	assert.False(t, ok)

	require.NoError(t, afero.WriteFile(fs, ws.Path(OriginalDir, "app.apk"), []byte("PK"), 0644))
	p, ok := ws.OriginalAPK()
	assert.True(t, ok)
	assert.Equal(t, ws.Path(OriginalDir, "app.apk"), p)
}
