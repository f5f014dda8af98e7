package file

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		prefix    string
		args      []string
		expected  string
		errAssert assert.ErrorAssertionFunc
	}{
		{
			prefix:    "/a/place",
			args:      []string{"somewhere/else"},
			expected:  "/a/place/somewhere/else",
			errAssert: assert.NoError,
		},
		{
			prefix:    "/a/place",
			args:      []string{"somewhere/../else"},
			expected:  "/a/place/else",
			errAssert: assert.NoError,
		},
		{
			prefix:    "/a/place",
			args:      []string{"../../../etc/passwd"},
			errAssert: assert.Error,
		},
		{
			prefix:    "/a/place",
			args:      []string{"../placeholder/file"},
			errAssert: assert.Error,
		},
	}

	for _, test := range tests {
		t.Run(test.prefix+" + "+filepath.Join(test.args...), func(t *testing.T) {
			actual, err := SafeJoin(test.prefix, test.args...)
			test.errAssert(t, err)
			if err != nil {
				assert.True(t, IsZipSlip(err))
				return
			}
			assert.Equal(t, filepath.FromSlash(test.expected), actual)
		})
	}
}

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/b.txt", []byte("b"), 0600))

	require.NoError(t, CopyFile(fs, "/src/b.txt", "/dst/nested/b.txt"))

	b, err := afero.ReadFile(fs, "/dst/nested/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(b))

	info, err := fs.Stat("/dst/nested/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().String())
}

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dir/file", []byte("x"), 0644))

	assert.True(t, Exists(fs, "/dir/file"))
	assert.False(t, Exists(fs, "/dir"))
	assert.False(t, Exists(fs, "/missing"))
	assert.True(t, DirExists(fs, "/dir"))
	assert.False(t, DirExists(fs, "/dir/file"))
	assert.True(t, DirHasEntries(fs, "/dir"))

	require.NoError(t, fs.MkdirAll("/empty", 0755))
	assert.False(t, DirHasEntries(fs, "/empty"))
}

func TestSHA256(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/f", []byte("hello"), 0644))

	actual, err := SHA256(fs, "/f")
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", actual)

	ok, digest, err := ValidateByHash(fs, "/f", "sha256:"+actual)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sha256:"+actual, digest)
}
