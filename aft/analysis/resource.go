package analysis

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const (
	stringsXML            = "res/values/strings.xml"
	defaultNetworkConfig  = "network_security_config"
	xmlResourcePrefix     = "@xml/"
	mimeSniffLimit        = 3072
	dexMagic              = "dex\n"
	userCertificateSource = "user"
)

var (
	secretResourceRule = ruleMeta{
		ID:             "AFT-RES-001",
		Type:           "SENSITIVE_DATA",
		Description:    "Secret stored in string resources",
		Recommendation: "Do not ship secrets in resources; they are trivially extracted",
		CWE:            "CWE-798",
		severity:       finding.MediumSeverity,
	}
	cleartextConfigRule = ruleMeta{
		ID:             "AFT-RES-002",
		Type:           "CLEARTEXT_TRAFFIC",
		Description:    "Network security configuration permits cleartext traffic",
		Recommendation: "Set cleartextTrafficPermitted=\"false\"",
		CWE:            "CWE-319",
		severity:       finding.MediumSeverity,
	}
	userCARule = ruleMeta{
		ID:             "AFT-RES-003",
		Type:           "USER_CA_TRUSTED",
		Description:    "Network security configuration trusts user installed certificates",
		Recommendation: "Only trust user certificates inside debug-overrides",
		CWE:            "CWE-295",
		severity:       finding.MediumSeverity,
	}
	embeddedCodeRule = ruleMeta{
		ID:             "AFT-RES-004",
		Type:           "EMBEDDED_CODE",
		Description:    "Asset contains executable code",
		Recommendation: "Review code loaded at runtime from assets; it escapes static analysis",
		CWE:            "CWE-829",
		severity:       finding.LowSeverity,
	}

	executableMimeTypes = []string{
		"application/x-elf",
		"application/vnd.android.package-archive",
		"application/java-archive",
	}
	executableExtensions = []string{".dex", ".apk", ".jar", ".so"}
)

type stringResource struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type networkSecurityConfig struct {
	BaseConfig     *domainConfig  `xml:"base-config"`
	DomainConfigs  []domainConfig `xml:"domain-config"`
	DebugOverrides *domainConfig  `xml:"debug-overrides"`
}

type domainConfig struct {
	CleartextTrafficPermitted string         `xml:"cleartextTrafficPermitted,attr"`
	Domains                   []string       `xml:"domain"`
	TrustAnchors              []certificates `xml:"trust-anchors>certificates"`
	DomainConfigs             []domainConfig `xml:"domain-config"`
}

type certificates struct {
	Src string `xml:"src,attr"`
}

func analyzeResources(fs afero.Fs, ws *workspace.Workspace, patterns *Patterns, networkConfigRef string, deep bool) ResourceResult {
	result := ResourceResult{Findings: []finding.Finding{}}

	record := func(findings []finding.Finding, analyzed bool, err error) {
		if err != nil {
			result.Issues = append(result.Issues, err.Error())
			return
		}
		if analyzed {
			result.FilesAnalyzed++
		}
		result.Findings = append(result.Findings, findings...)
	}

	record(checkStringResources(fs, ws.Path(workspace.SmaliDir, filepath.FromSlash(stringsXML)), patterns))

	name := defaultNetworkConfig
	if strings.HasPrefix(networkConfigRef, xmlResourcePrefix) {
		name = strings.TrimPrefix(networkConfigRef, xmlResourcePrefix)
	}
	rel := "res/xml/" + name + ".xml"
	record(checkNetworkSecurityConfig(fs, ws.Path(workspace.SmaliDir, filepath.FromSlash(rel)), rel))

	if deep {
		findings, count, err := checkAssets(fs, ws.Path(workspace.AssetsDir))
		if err != nil {
			result.Issues = append(result.Issues, err.Error())
		}
		result.FilesAnalyzed += count
		result.Findings = append(result.Findings, findings...)
	}

	return result
}

// checkStringResources reports string resources named like secrets that hold a literal value.
func checkStringResources(fs afero.Fs, path string, patterns *Patterns) ([]finding.Finding, bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("unable to read %s: %w", stringsXML, err)
	}

	var findings []finding.Finding
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return findings, true, fmt.Errorf("unable to parse %s: %w", stringsXML, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "string" {
			continue
		}
		line := lineAt(data, dec.InputOffset())

		var s stringResource
		if err := dec.DecodeElement(&s, &start); err != nil {
			return findings, true, fmt.Errorf("unable to parse %s: %w", stringsXML, err)
		}

		value := strings.TrimSpace(s.Value)
		if value == "" || strings.HasPrefix(value, "@") || !patterns.isSecretResourceName(s.Name) {
			continue
		}

		f := secretResourceRule.newFinding(finding.ResourceCategory, stringsXML, line,
			fmt.Sprintf("<string name=%q>%s</string>", s.Name, value), s.Name)
		f.Description = fmt.Sprintf("%s: %s", secretResourceRule.Description, s.Name)
		findings = append(findings, f)
	}
	return findings, true, nil
}

func checkNetworkSecurityConfig(fs afero.Fs, path, rel string) ([]finding.Finding, bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("unable to read %s: %w", rel, err)
	}

	var cfg networkSecurityConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, true, fmt.Errorf("unable to parse %s: %w", rel, err)
	}

	var findings []finding.Finding
	var visit func(scope string, c domainConfig)
	visit = func(scope string, c domainConfig) {
		if strings.EqualFold(strings.TrimSpace(c.CleartextTrafficPermitted), "true") {
			f := cleartextConfigRule.newFinding(finding.ResourceCategory, rel, 0, "", scope)
			f.Description = fmt.Sprintf("%s (%s)", cleartextConfigRule.Description, scope)
			findings = append(findings, f)
		}
		for _, cert := range c.TrustAnchors {
			if cert.Src == userCertificateSource {
				f := userCARule.newFinding(finding.ResourceCategory, rel, 0, "", scope)
				f.Description = fmt.Sprintf("%s (%s)", userCARule.Description, scope)
				findings = append(findings, f)
				break
			}
		}
		for _, nested := range c.DomainConfigs {
			visit(domainScope(nested), nested)
		}
	}

	if cfg.BaseConfig != nil {
		visit("base-config", *cfg.BaseConfig)
	}
	for _, c := range cfg.DomainConfigs {
		visit(domainScope(c), c)
	}
	// debug-overrides only take effect in debuggable builds, which are reported on their own

	return findings, true, nil
}

func domainScope(c domainConfig) string {
	var domains []string
	for _, d := range c.Domains {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return "domain-config"
	}
	return "domain-config " + strings.Join(domains, ",")
}

// checkAssets reports assets holding native code, DEX files or nested archives with code.
func checkAssets(fs afero.Fs, root string) ([]finding.Finding, int, error) {
	if ok, _ := afero.DirExists(fs, root); !ok {
		return nil, 0, nil
	}

	var findings []finding.Finding
	var count int
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		count++

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = "assets/" + filepath.ToSlash(rel)

		kind, ok := executableKind(fs, path)
		if !ok {
			return nil
		}
		f := embeddedCodeRule.newFinding(finding.ResourceCategory, rel, 0, "", kind)
		f.Description = fmt.Sprintf("%s (%s)", embeddedCodeRule.Description, kind)
		findings = append(findings, f)
		return nil
	})
	if err != nil {
		return findings, count, fmt.Errorf("unable to walk assets: %w", err)
	}
	return findings, count, nil
}

func executableKind(fs afero.Fs, path string) (string, bool) {
	f, err := fs.Open(path)
	if err != nil {
		log.Debugf("unable to open asset %q: %+v", path, err)
		return "", false
	}
	defer f.Close()

	head := make([]byte, mimeSniffLimit)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	if bytes.HasPrefix(head, []byte(dexMagic)) {
		return "application/vnd.android.dex", true
	}

	mType := mimetype.Detect(head)
	for m := mType; m != nil; m = m.Parent() {
		for _, candidate := range executableMimeTypes {
			if m.Is(candidate) {
				return m.String(), true
			}
		}
	}

	if lower := strings.ToLower(path); internal.HasAnyOfSuffixes(lower, executableExtensions...) {
		return "extension " + filepath.Ext(lower), true
	}
	return "", false
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
