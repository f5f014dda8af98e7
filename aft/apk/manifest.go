package apk

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Manifest is the subset of a (decoded, plain text) AndroidManifest.xml that aft inspects. Attribute names are
// matched regardless of namespace, so both apktool output and manifests decoded from the binary form parse alike.
type Manifest struct {
	XMLName              xml.Name         `xml:"manifest"`
	Package              string           `xml:"package,attr"`
	VersionCode          string           `xml:"versionCode,attr"`
	VersionName          string           `xml:"versionName,attr"`
	SharedUserID         string           `xml:"sharedUserId,attr"`
	UsesSDK              UsesSDK          `xml:"uses-sdk"`
	UsesPermissions      []UsesPermission `xml:"uses-permission"`
	UsesPermissionsSdk23 []UsesPermission `xml:"uses-permission-sdk-23"`
	Permissions          []Permission     `xml:"permission"`
	Application          Application      `xml:"application"`
}

type UsesSDK struct {
	Min    string `xml:"minSdkVersion,attr"`
	Target string `xml:"targetSdkVersion,attr"`
}

type UsesPermission struct {
	Name string `xml:"name,attr"`
}

// Permission is a custom permission declared by the application.
type Permission struct {
	Name            string `xml:"name,attr"`
	ProtectionLevel string `xml:"protectionLevel,attr"`
}

type Application struct {
	Name                  string        `xml:"name,attr"`
	Label                 string        `xml:"label,attr"`
	Debuggable            string        `xml:"debuggable,attr"`
	AllowBackup           string        `xml:"allowBackup,attr"`
	UsesCleartextTraffic  string        `xml:"usesCleartextTraffic,attr"`
	TestOnly              string        `xml:"testOnly,attr"`
	NetworkSecurityConfig string        `xml:"networkSecurityConfig,attr"`
	Activities            []Component   `xml:"activity"`
	ActivityAliases       []Component   `xml:"activity-alias"`
	Services              []Component   `xml:"service"`
	Receivers             []Component   `xml:"receiver"`
	Providers             []Component   `xml:"provider"`
	UsesLibraries         []UsesLibrary `xml:"uses-library"`
}

type UsesLibrary struct {
	Name     string `xml:"name,attr"`
	Required string `xml:"required,attr"`
}

// Component is an activity, activity alias, service, receiver or content provider declaration.
type Component struct {
	Name                string         `xml:"name,attr"`
	Exported            string         `xml:"exported,attr"`
	Permission          string         `xml:"permission,attr"`
	ReadPermission      string         `xml:"readPermission,attr"`
	WritePermission     string         `xml:"writePermission,attr"`
	Authorities         string         `xml:"authorities,attr"`
	GrantURIPermissions string         `xml:"grantUriPermissions,attr"`
	IntentFilters       []IntentFilter `xml:"intent-filter"`
}

type IntentFilter struct {
	AutoVerify string    `xml:"autoVerify,attr"`
	Actions    []Named   `xml:"action"`
	Categories []Named   `xml:"category"`
	Data       []DataTag `xml:"data"`
}

type Named struct {
	Name string `xml:"name,attr"`
}

type DataTag struct {
	Scheme string `xml:"scheme,attr"`
	Host   string `xml:"host,attr"`
	Path   string `xml:"path,attr"`
}

// ParseManifest decodes a plain text AndroidManifest.xml.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := xml.NewDecoder(bytes.NewReader(data))
	// apktool keeps the original encoding declaration, which may not be utf-8
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unable to parse manifest: %w", err)
	}
	return &m, nil
}

// PermissionNames returns every requested permission (including sdk-23 only requests), de-duplicated in
// declaration order.
func (m Manifest) PermissionNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range append(append([]UsesPermission{}, m.UsesPermissions...), m.UsesPermissionsSdk23...) {
		if p.Name == "" {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, p.Name)
	}
	return out
}

// ResolveName expands a component class name relative to the manifest package (".Main" and "Main" both
// become "<package>.Main").
func (m Manifest) ResolveName(name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "."):
		return m.Package + name
	case !strings.Contains(name, "."):
		return m.Package + "." + name
	default:
		return name
	}
}

func (m Manifest) componentNames(components []Component) []string {
	var out []string
	for _, c := range components {
		if n := m.ResolveName(c.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (m Manifest) LibraryNames() []string {
	var out []string
	for _, l := range m.Application.UsesLibraries {
		if l.Name != "" {
			out = append(out, l.Name)
		}
	}
	return out
}

// IsReference reports whether an attribute value is a resource (@bool/x) or theme (?attr/x) reference.
func IsReference(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "@") || strings.HasPrefix(v, "?")
}

// BoolAttr interprets an android boolean attribute, reporting whether it was set at all.
// References resolve at runtime and count as not set.
func BoolAttr(value string) (val bool, set bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch {
	case v == "", IsReference(v):
		return false, false
	case v == "true", v == "1", v == "0xffffffff", v == "-1":
		return true, true
	default:
		return false, true
	}
}

// IntAttr interprets an android integer attribute (decimal or hex), returning 0 when unset or not a literal
// (e.g. a resource reference).
func IntAttr(value string) int {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return 0
	}
	return int(n)
}
