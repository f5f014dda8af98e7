/*
Package workspace describes the on-disk layout of an extracted project.
*/
package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
)

const (
	ManifestDir  = "manifest"
	JavaDir      = "java"
	SmaliDir     = "smali"
	ResourcesDir = "resources"
	AssetsDir    = "assets"
	LibsDir      = "libs"
	OriginalDir  = "original"
	DistDir      = "dist"

	InfoFile       = "apk_info.json"
	ManifestFile   = "AndroidManifest.xml"
	apktoolYAML    = "apktool.yml"
	filePermission = 0644
	dirPermission  = 0755
)

// Dirs are created for every project, in this order.
var Dirs = []string{ManifestDir, JavaDir, SmaliDir, ResourcesDir, AssetsDir, LibsDir, OriginalDir}

// Workspace is a project directory produced by extraction.
type Workspace struct {
	Root string
	fs   afero.Fs
}

// Create makes the project layout under root (existing directories are kept).
func Create(fs afero.Fs, root string) (*Workspace, error) {
	for _, d := range Dirs {
		if err := fs.MkdirAll(filepath.Join(root, d), dirPermission); err != nil {
			return nil, fmt.Errorf("unable to create project directory %q: %w", d, err)
		}
	}
	return &Workspace{Root: root, fs: fs}, nil
}

// Open validates that root is a project: it needs apk_info.json or apktool's smali/apktool.yml.
func Open(fs afero.Fs, root string) (*Workspace, error) {
	if !file.DirExists(fs, root) {
		return nil, fmt.Errorf("%q: %w", root, afterr.ErrNotAProject)
	}

	ws := &Workspace{Root: root, fs: fs}
	if !file.Exists(fs, ws.InfoPath()) && !file.Exists(fs, ws.Path(SmaliDir, apktoolYAML)) {
		return nil, fmt.Errorf("%q has neither %s nor %s/%s: %w", root, InfoFile, SmaliDir, apktoolYAML, afterr.ErrNotAProject)
	}
	return ws, nil
}

func (w Workspace) Fs() afero.Fs {
	return w.fs
}

// Path joins the given elements onto the project root.
func (w Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Root}, elem...)...)
}

func (w Workspace) InfoPath() string {
	return w.Path(InfoFile)
}

// ManifestPath prefers the decoded manifest under manifest/, falling back to apktool's copy under smali/.
// The returned path may not exist.
func (w Workspace) ManifestPath() string {
	primary := w.Path(ManifestDir, ManifestFile)
	if file.Exists(w.fs, primary) {
		return primary
	}
	fallback := w.Path(SmaliDir, ManifestFile)
	if file.Exists(w.fs, fallback) {
		return fallback
	}
	return primary
}

// HasJava reports whether decompiled java sources are present.
func (w Workspace) HasJava() bool {
	return file.DirHasEntries(w.fs, w.Path(JavaDir))
}

// HasSmali reports whether apktool output is present.
func (w Workspace) HasSmali() bool {
	return file.Exists(w.fs, w.Path(SmaliDir, apktoolYAML)) || file.DirHasEntries(w.fs, w.Path(SmaliDir))
}

// OriginalAPK returns the path of the copy of the APK kept in original/, if any.
func (w Workspace) OriginalAPK() (string, bool) {
	entries, err := afero.ReadDir(w.fs, w.Path(OriginalDir))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".apk" {
			return w.Path(OriginalDir, e.Name()), true
		}
	}
	return "", false
}

func (w Workspace) WriteInfo(info apk.Info) error {
	by, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", InfoFile, err)
	}
	if err := afero.WriteFile(w.fs, w.InfoPath(), by, filePermission); err != nil {
		return fmt.Errorf("unable to write %s: %w", InfoFile, err)
	}
	return nil
}

// ReadInfo loads apk_info.json. A project restored from apktool output alone has none; os.ErrNotExist is returned.
func (w Workspace) ReadInfo() (*apk.Info, error) {
	by, err := afero.ReadFile(w.fs, w.InfoPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", InfoFile, os.ErrNotExist)
		}
		return nil, fmt.Errorf("unable to read %s: %w", InfoFile, err)
	}

	var info apk.Info
	if err := json.Unmarshal(by, &info); err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", InfoFile, err)
	}
	return &info, nil
}

// apktoolMeta is the part of apktool.yml read back for analysis. apktool moves uses-sdk out of the
// decoded manifest and into sdkInfo.
type apktoolMeta struct {
	SDKInfo struct {
		MinSDKVersion    string `yaml:"minSdkVersion"`
		TargetSDKVersion string `yaml:"targetSdkVersion"`
	} `yaml:"sdkInfo"`
}

// ApktoolSDK returns the min and target sdk recorded in smali/apktool.yml (0 when absent).
// os.ErrNotExist is returned when apktool did not run.
func (w Workspace) ApktoolSDK() (minSDK, targetSDK int, err error) {
	by, err := afero.ReadFile(w.fs, w.Path(SmaliDir, apktoolYAML))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, fmt.Errorf("%s: %w", apktoolYAML, os.ErrNotExist)
		}
		return 0, 0, fmt.Errorf("unable to read %s: %w", apktoolYAML, err)
	}

	// older apktool releases open the document with a java class tag
	if bytes.HasPrefix(by, []byte("!!")) {
		if i := bytes.IndexByte(by, '\n'); i >= 0 {
			by = by[i+1:]
		} else {
			by = nil
		}
	}

	var meta apktoolMeta
	if err := yaml.Unmarshal(by, &meta); err != nil {
		return 0, 0, fmt.Errorf("unable to decode %s: %w", apktoolYAML, err)
	}
	return apk.IntAttr(meta.SDKInfo.MinSDKVersion), apk.IntAttr(meta.SDKInfo.TargetSDKVersion), nil
}
