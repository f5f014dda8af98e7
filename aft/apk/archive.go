package apk

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const (
	manifestEntry = "AndroidManifest.xml"

	// DefaultMaxEntrySize limits how much is read from a single archive entry, guarding against decompression bombs.
	DefaultMaxEntrySize = 650 * file.MB
)

// Entry is a single file within an APK.
type Entry struct {
	Name           string `json:"name"`
	Size           uint64 `json:"size"`
	CompressedSize uint64 `json:"compressedSize"`
	CRC32          uint32 `json:"crc32"`
}

// Validate ensures the given path is a ZIP archive holding an AndroidManifest.xml.
func Validate(path string) error {
	mType, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %q: %w", path, err)
	}

	if !isZip(mType) {
		return fmt.Errorf("%q has content type %q: %w", path, mType.String(), afterr.ErrNotAnAPK)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%q is not a readable zip archive (%v): %w", path, err, afterr.ErrNotAnAPK)
	}
	defer log.CloseAndLogError(r, path)

	for _, f := range r.File {
		if f.Name == manifestEntry {
			return nil
		}
	}
	return fmt.Errorf("%q has no %s: %w", path, manifestEntry, afterr.ErrNotAnAPK)
}

func isZip(mType *mimetype.MIME) bool {
	for m := mType; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

// Entries lists the files in the APK whose name starts with the given prefix (all files for an empty prefix),
// sorted by name.
func Entries(path, prefix string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer log.CloseAndLogError(r, path)

	var entries []Entry
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		entries = append(entries, Entry{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			CRC32:          f.CRC32,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ExtractPrefix writes every entry under the given prefix into dst, with the prefix removed from the entry
// name (e.g. "assets/www/index.html" becomes "<dst>/www/index.html"). Entries that would resolve outside of
// dst are rejected, entries larger than maxEntrySize are skipped. Returns the number of files written.
func ExtractPrefix(path, prefix, dst string, maxEntrySize uint64) (int, error) {
	if maxEntrySize == 0 {
		maxEntrySize = DefaultMaxEntrySize
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer log.CloseAndLogError(r, path)

	var count int
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}

		rel := strings.TrimPrefix(f.Name, prefix)
		if rel == "" {
			continue
		}

		target, err := file.SafeJoin(dst, filepath.FromSlash(rel))
		if err != nil {
			if file.IsZipSlip(err) {
				return count, fmt.Errorf("APK entry %q escapes the extraction directory: %w", f.Name, err)
			}
			return count, err
		}

		if f.UncompressedSize64 > maxEntrySize {
			log.Warnf("skipping oversized APK entry %q (%d bytes)", f.Name, f.UncompressedSize64)
			continue
		}

		if err := extractEntry(f, target, int64(maxEntrySize)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func extractEntry(f *zip.File, target string, limit int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to mkdir (%s): %w", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("unable to open APK entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("unable to create %q: %w", target, err)
	}
	defer out.Close()

	// the declared size may lie, so the reader is bounded as well
	if _, err := io.Copy(out, io.LimitReader(rc, limit)); err != nil {
		return fmt.Errorf("unable to extract APK entry %q: %w", f.Name, err)
	}
	return nil
}

// Architectures lists the native ABIs (lib/<abi>/...) shipped in the APK.
func Architectures(entries []Entry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, "lib/") {
			continue
		}
		parts := strings.Split(e.Name, "/")
		if len(parts) < 3 || parts[1] == "" {
			continue
		}
		if _, ok := seen[parts[1]]; ok {
			continue
		}
		seen[parts[1]] = struct{}{}
		out = append(out, parts[1])
	}
	sort.Strings(out)
	return out
}
