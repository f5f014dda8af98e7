package file

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyFile copies src to dst (creating the parent directory of dst as needed), preserving the file mode.
func CopyFile(fs afero.Fs, src, dst string) error {
	var err error
	var srcFd afero.File
	var dstFd afero.File
	var srcinfo os.FileInfo

	if srcFd, err = fs.Open(src); err != nil {
		return err
	}
	defer srcFd.Close()

	if err = fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	if dstFd, err = fs.Create(dst); err != nil {
		return err
	}
	defer dstFd.Close()

	if _, err = io.Copy(dstFd, srcFd); err != nil {
		return err
	}
	if srcinfo, err = fs.Stat(src); err != nil {
		return err
	}
	return fs.Chmod(dst, srcinfo.Mode())
}
