package file

import (
	"os"

	"github.com/spf13/afero"
)

// Exists reports whether a regular file (not a directory) exists at the given path.
func Exists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}

func DirExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DirHasEntries reports whether the given directory exists and contains at least one entry.
func DirHasEntries(fs afero.Fs, path string) bool {
	entries, err := afero.ReadDir(fs, path)
	return err == nil && len(entries) > 0
}
