/*
Package apk inspects Android application packages: metadata, permissions, components, native libraries and
signing certificates, without relying on any external tool.
*/
package apk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	androidapk "github.com/shogo82148/androidbinary/apk"
	"github.com/spf13/afero"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

// Info is the metadata recorded for an APK (persisted as apk_info.json in a project).
type Info struct {
	FileName       string   `json:"file_name"`
	PackageName    string   `json:"package_name"`
	VersionCode    int32    `json:"version"`
	VersionName    string   `json:"version_name"`
	MinSDK         int32    `json:"min_sdk"`
	TargetSDK      int32    `json:"target_sdk"`
	Label          string   `json:"label,omitempty"`
	SHA256         string   `json:"sha256"`
	Size           int64    `json:"size"`
	Permissions    []string `json:"permissions"`
	Activities     []string `json:"activities"`
	Services       []string `json:"services"`
	Receivers      []string `json:"receivers"`
	Providers      []string `json:"providers"`
	Libraries      []string `json:"libraries"`
	Architectures  []string `json:"architectures"`
	Files          []string `json:"files"`
	SigningScheme  int      `json:"signing_scheme"`
	Signers        []Signer `json:"signers,omitempty"`
	SignatureError string   `json:"signature_error,omitempty"`
}

// Parse validates the given APK and collects its metadata. An unsigned or badly signed APK is not an error:
// the problem is recorded in SignatureError.
func Parse(path string) (*Info, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat APK: %w", err)
	}

	digest, err := file.SHA256(afero.NewOsFs(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash APK: %w", err)
	}

	info := &Info{
		FileName: filepath.Base(path),
		SHA256:   digest,
		Size:     fi.Size(),
	}

	if err := readBinaryManifest(path, info); err != nil {
		return nil, err
	}

	if err := readComponents(path, info); err != nil {
		// the basic metadata above is enough to continue, the components are informational
		log.Warnf("unable to read components of %q: %+v", path, err)
	}

	entries, err := Entries(path, "")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		info.Files = append(info.Files, e.Name)
	}
	info.Architectures = Architectures(entries)

	sig, err := VerifySignature(path)
	if sig != nil {
		info.SigningScheme = sig.Scheme
		info.Signers = sig.Signers
	}
	if err != nil {
		log.Debugf("signature of %q: %+v", path, err)
		info.SignatureError = err.Error()
	}

	return info, nil
}

func readBinaryManifest(path string, info *Info) error {
	pkg, err := androidapk.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open APK: %w", err)
	}
	defer pkg.Close()

	manifest := pkg.Manifest()
	info.PackageName = manifest.Package.MustString()
	info.VersionName = manifest.VersionName.MustString()
	info.VersionCode = manifest.VersionCode.MustInt32()
	info.MinSDK = manifest.SDK.Min.MustInt32()
	info.TargetSDK = manifest.SDK.Target.MustInt32()

	if label, err := pkg.Label(nil); err == nil {
		info.Label = label
	}
	return nil
}

func readComponents(path string, info *Info) error {
	data, err := DecodeManifestXML(path)
	var resErr *ResourcesError
	if err != nil && !errors.As(err, &resErr) {
		return err
	}

	m, err := ParseManifest(data)
	if err != nil {
		return err
	}

	if info.PackageName == "" {
		info.PackageName = m.Package
	}
	info.Permissions = m.PermissionNames()
	info.Activities = m.componentNames(m.Application.Activities)
	info.Services = m.componentNames(m.Application.Services)
	info.Receivers = m.componentNames(m.Application.Receivers)
	info.Providers = m.componentNames(m.Application.Providers)
	info.Libraries = m.LibraryNames()
	return nil
}
