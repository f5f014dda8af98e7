package apk

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "test.apk")
	f, err := os.Create(p)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return p
}

func TestValidate(t *testing.T) {
	t.Run("apk-like archive", func(t *testing.T) {
		p := writeZip(t, map[string]string{
			"AndroidManifest.xml": "binary",
			"classes.dex":         "dex\n035",
		})
		assert.NoError(t, Validate(p))
	})

	t.Run("zip without a manifest", func(t *testing.T) {
		p := writeZip(t, map[string]string{"readme.txt": "hello"})
		assert.ErrorIs(t, Validate(p), afterr.ErrNotAnAPK)
	})

	t.Run("not a zip", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "fake.apk")
		require.NoError(t, os.WriteFile(p, []byte("just some text"), 0644))
		assert.ErrorIs(t, Validate(p), afterr.ErrNotAnAPK)
	})

	t.Run("missing file", func(t *testing.T) {
		err := Validate(filepath.Join(t.TempDir(), "missing.apk"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, afterr.ErrNotAnAPK)
	})
}

func TestEntriesAndArchitectures(t *testing.T) {
	p := writeZip(t, map[string]string{
		"AndroidManifest.xml":          "m",
		"lib/arm64-v8a/libnative.so":   "so",
		"lib/armeabi-v7a/libnative.so": "so",
		"lib/arm64-v8a/libother.so":    "so",
		"assets/config/settings.json":  "{}",
		"res/drawable/icon.png":        "png",
		"META-INF/CERT.RSA":            "cert",
		"lib/x86/":                     "",
		"lib/README":                   "not an abi dir",
	})

	all, err := Entries(p, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "AndroidManifest.xml", all[0].Name)

	libs, err := Entries(p, "lib/")
	require.NoError(t, err)
	assert.Len(t, libs, 4)

	assert.Equal(t, []string{"arm64-v8a", "armeabi-v7a"}, Architectures(all))
}

func TestExtractPrefix(t *testing.T) {
	p := writeZip(t, map[string]string{
		"AndroidManifest.xml":         "m",
		"assets/config/settings.json": `{"debug": true}`,
		"assets/www/index.html":       "<html/>",
		"assetsnot/other.txt":         "nope",
	})

	dst := t.TempDir()
	count, err := ExtractPrefix(p, "assets/", dst, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	content, err := os.ReadFile(filepath.Join(dst, "config", "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"debug": true}`, string(content))
	assert.NoFileExists(t, filepath.Join(dst, "other.txt"))
}

func TestExtractPrefix_SizeLimit(t *testing.T) {
	p := writeZip(t, map[string]string{
		"AndroidManifest.xml": "m",
		"assets/small.txt":    "ok",
		"assets/large.bin":    "this entry is longer than the limit",
	})

	dst := t.TempDir()
	count, err := ExtractPrefix(p, "assets/", dst, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(dst, "small.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "large.bin"))
}

func TestExtractPrefix_ZipSlip(t *testing.T) {
	p := writeZip(t, map[string]string{
		"AndroidManifest.xml":     "m",
		"assets/../../escape.txt": "gotcha",
	})

	root := t.TempDir()
	dst := filepath.Join(root, "project", "assets")
	_, err := ExtractPrefix(p, "assets/", dst, 0)
	require.Error(t, err)
	assert.True(t, file.IsZipSlip(err))
	assert.NoFileExists(t, filepath.Join(root, "escape.txt"))
}
