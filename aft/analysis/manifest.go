package analysis

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
)

const (
	manifestFile = "AndroidManifest.xml"

	// components with an intent filter stop being exported implicitly from Android 12
	implicitExportMaxSDK = 30
	// providers were exported by default up to Android 4.1
	providerExportMaxSDK = 16
	minimumSupportedSDK  = 21
	// apps targeting Android 9 and above have cleartext disabled by default
	cleartextDefaultOffSDK = 28
)

type manifestRule struct {
	id             string
	typ            string
	severity       finding.Severity
	description    string
	recommendation string
	cwe            string
}

var (
	debuggableRule = manifestRule{"AFT-MAN-001", "DEBUGGABLE", finding.HighSeverity,
		"Application is debuggable", "Remove android:debuggable from release builds", "CWE-489"}
	allowBackupRule = manifestRule{"AFT-MAN-002", "BACKUP_ENABLED", finding.MediumSeverity,
		"Application data can be backed up (android:allowBackup)", "Set android:allowBackup=\"false\" or define backup rules excluding sensitive data", "CWE-530"}
	cleartextRule = manifestRule{"AFT-MAN-003", "CLEARTEXT_TRAFFIC", finding.MediumSeverity,
		"Cleartext network traffic is allowed", "Set android:usesCleartextTraffic=\"false\"", "CWE-319"}
	testOnlyRule = manifestRule{"AFT-MAN-004", "TEST_ONLY", finding.HighSeverity,
		"Application is marked testOnly", "Do not ship builds with android:testOnly", "CWE-489"}
	sharedUserIDRule = manifestRule{"AFT-MAN-005", "SHARED_USER_ID", finding.MediumSeverity,
		"Application shares a user id with other applications", "Remove android:sharedUserId", "CWE-250"}
	exportedProviderRule = manifestRule{"AFT-MAN-006", "EXPORTED_COMPONENT", finding.HighSeverity,
		"Content provider is exported without a permission", "Set android:exported=\"false\" or protect the provider with a signature permission", "CWE-926"}
	exportedComponentRule = manifestRule{"AFT-MAN-007", "EXPORTED_COMPONENT", finding.MediumSeverity,
		"Component is exported without a permission", "Set android:exported=\"false\" or require a permission", "CWE-926"}
	deepLinkRule = manifestRule{"AFT-MAN-008", "UNVERIFIED_DEEP_LINK", finding.LowSeverity,
		"Deep link is not verified (android:autoVerify)", "Use verified App Links and validate every incoming URI", "CWE-939"}
	weakPermissionRule = manifestRule{"AFT-MAN-009", "WEAK_CUSTOM_PERMISSION", finding.LowSeverity,
		"Custom permission is not signature protected", "Declare custom permissions with android:protectionLevel=\"signature\"", "CWE-732"}
	minSDKRule = manifestRule{"AFT-MAN-010", "OUTDATED_MIN_SDK", finding.LowSeverity,
		"Application supports outdated Android versions", fmt.Sprintf("Raise minSdkVersion to at least %d", minimumSupportedSDK), "CWE-1104"}
	networkConfigRule = manifestRule{"AFT-MAN-011", "MISSING_NETWORK_SECURITY_CONFIG", finding.LowSeverity,
		"No network security configuration and cleartext is enabled by default for the target SDK", "Add a network security configuration disabling cleartext traffic", "CWE-319"}
)

func (r manifestRule) newFinding(description, evidence string) finding.Finding {
	if description == "" {
		description = r.description
	}
	return finding.Finding{
		RuleID:         r.id,
		Type:           r.typ,
		Severity:       r.severity,
		Category:       finding.ManifestCategory,
		Description:    description,
		File:           manifestFile,
		Evidence:       evidence,
		Recommendation: r.recommendation,
		CWE:            r.cwe,
	}
}

func analyzeManifest(fs afero.Fs, ws *workspace.Workspace, info *apk.Info) (ManifestResult, *apk.Manifest) {
	result := ManifestResult{
		Path:        ws.ManifestPath(),
		Permissions: []string{},
		Components:  []ComponentInfo{},
		Findings:    []finding.Finding{},
	}

	data, err := afero.ReadFile(fs, result.Path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Error = "manifest not found"
		} else {
			result.Error = fmt.Sprintf("unable to read manifest: %v", err)
		}
		return result, nil
	}

	m, err := apk.ParseManifest(data)
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("error parsing manifest: %v", err))
		return result, nil
	}

	result.Package = m.Package
	result.MinSDK = apk.IntAttr(m.UsesSDK.Min)
	result.TargetSDK = apk.IntAttr(m.UsesSDK.Target)
	// apktool moves uses-sdk into apktool.yml, the recorded metadata or apktool.yml fill the gap
	if info != nil {
		if result.MinSDK == 0 {
			result.MinSDK = int(info.MinSDK)
		}
		if result.TargetSDK == 0 {
			result.TargetSDK = int(info.TargetSDK)
		}
	}
	if result.MinSDK == 0 || result.TargetSDK == 0 {
		minSDK, targetSDK, err := ws.ApktoolSDK()
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			result.Issues = append(result.Issues, err.Error())
		default:
			if result.MinSDK == 0 {
				result.MinSDK = minSDK
			}
			if result.TargetSDK == 0 {
				result.TargetSDK = targetSDK
			}
		}
	}
	result.networkSecurityConfig = m.Application.NetworkSecurityConfig

	if perms := m.PermissionNames(); len(perms) > 0 {
		result.Permissions = perms
	}

	result.Findings = append(result.Findings, checkApplication(*m, result.MinSDK, result.TargetSDK)...)

	components, componentFindings := checkComponents(*m, result.TargetSDK)
	result.Components = components
	result.Findings = append(result.Findings, componentFindings...)

	result.Findings = append(result.Findings, checkCustomPermissions(*m)...)

	return result, m
}

func checkApplication(m apk.Manifest, minSDK, targetSDK int) []finding.Finding {
	var findings []finding.Finding
	app := m.Application

	if v, _ := apk.BoolAttr(app.Debuggable); v {
		findings = append(findings, debuggableRule.newFinding("", `android:debuggable="true"`))
	}

	switch v, set := apk.BoolAttr(app.AllowBackup); {
	case apk.IsReference(app.AllowBackup):
		findings = append(findings, allowBackupRule.newFinding(
			fmt.Sprintf("android:allowBackup is resolved from %s at runtime and may be true", strings.TrimSpace(app.AllowBackup)),
			fmt.Sprintf("android:allowBackup=%q", strings.TrimSpace(app.AllowBackup))))
	case !set:
		findings = append(findings, allowBackupRule.newFinding("android:allowBackup is not set and defaults to true", ""))
	case v:
		findings = append(findings, allowBackupRule.newFinding("", `android:allowBackup="true"`))
	}

	if v, _ := apk.BoolAttr(app.UsesCleartextTraffic); v {
		findings = append(findings, cleartextRule.newFinding("", `android:usesCleartextTraffic="true"`))
	}

	if v, _ := apk.BoolAttr(app.TestOnly); v {
		findings = append(findings, testOnlyRule.newFinding("", `android:testOnly="true"`))
	}

	if m.SharedUserID != "" {
		findings = append(findings, sharedUserIDRule.newFinding("", fmt.Sprintf("android:sharedUserId=%q", m.SharedUserID)))
	}

	if minSDK > 0 && minSDK < minimumSupportedSDK {
		findings = append(findings, minSDKRule.newFinding(
			fmt.Sprintf("minSdkVersion %d supports Android versions without current security fixes", minSDK),
			fmt.Sprintf("minSdkVersion=%d", minSDK)))
	}

	if app.NetworkSecurityConfig == "" && targetSDK > 0 && targetSDK < cleartextDefaultOffSDK {
		if v, set := apk.BoolAttr(app.UsesCleartextTraffic); !set || v {
			findings = append(findings, networkConfigRule.newFinding("", fmt.Sprintf("targetSdkVersion=%d", targetSDK)))
		}
	}

	return findings
}

func checkComponents(m apk.Manifest, targetSDK int) ([]ComponentInfo, []finding.Finding) {
	kinds := []struct {
		kind       string
		components []apk.Component
	}{
		{"activity", m.Application.Activities},
		{"activity-alias", m.Application.ActivityAliases},
		{"service", m.Application.Services},
		{"receiver", m.Application.Receivers},
		{"provider", m.Application.Providers},
	}

	var infos []ComponentInfo
	var findings []finding.Finding
	for _, k := range kinds {
		for _, c := range k.components {
			info := describeComponent(m, k.kind, c, targetSDK)
			infos = append(infos, info)

			if info.Exported && !isLauncher(c) && !protected(c) {
				rule := exportedComponentRule
				if k.kind == "provider" {
					rule = exportedProviderRule
				}
				description := fmt.Sprintf("%s (%s %s)", rule.description, k.kind, info.Name)
				if info.Implicit {
					description += ", exported implicitly through an intent filter"
				}
				findings = append(findings, rule.newFinding(description, info.Name))
			}

			if schemes := unverifiedDeepLinkSchemes(c); len(schemes) > 0 {
				findings = append(findings, deepLinkRule.newFinding(
					fmt.Sprintf("%s (%s %s)", deepLinkRule.description, k.kind, info.Name),
					fmt.Sprintf("%s schemes=%s", info.Name, strings.Join(schemes, ","))))
			}
		}
	}
	if infos == nil {
		infos = []ComponentInfo{}
	}
	return infos, findings
}

func describeComponent(m apk.Manifest, kind string, c apk.Component, targetSDK int) ComponentInfo {
	info := ComponentInfo{
		Name:          m.ResolveName(c.Name),
		Kind:          kind,
		Permission:    c.Permission,
		IntentFilters: len(c.IntentFilters),
	}
	for _, f := range c.IntentFilters {
		for _, a := range f.Actions {
			info.Actions = append(info.Actions, a.Name)
		}
	}

	exported, set := apk.BoolAttr(c.Exported)
	switch {
	case set:
		info.Exported = exported
	case kind == "provider":
		info.Exported = targetSDK > 0 && targetSDK <= providerExportMaxSDK
		info.Implicit = info.Exported
	default:
		// an unknown target sdk is treated as an old one
		info.Exported = len(c.IntentFilters) > 0 && targetSDK <= implicitExportMaxSDK
		info.Implicit = info.Exported
	}
	return info
}

func protected(c apk.Component) bool {
	return c.Permission != "" || (c.ReadPermission != "" && c.WritePermission != "")
}

// isLauncher reports whether the component is a main entry point, which has to be exported.
func isLauncher(c apk.Component) bool {
	for _, f := range c.IntentFilters {
		if hasNamed(f.Actions, "android.intent.action.MAIN") && hasNamed(f.Categories, "android.intent.category.LAUNCHER") {
			return true
		}
	}
	return false
}

func unverifiedDeepLinkSchemes(c apk.Component) []string {
	seen := make(map[string]struct{})
	for _, f := range c.IntentFilters {
		if !hasNamed(f.Actions, "android.intent.action.VIEW") || !hasNamed(f.Categories, "android.intent.category.BROWSABLE") {
			continue
		}
		if v, _ := apk.BoolAttr(f.AutoVerify); v {
			continue
		}
		for _, d := range f.Data {
			if d.Scheme != "" {
				seen[d.Scheme] = struct{}{}
			}
		}
	}

	var schemes []string
	for s := range seen {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

func checkCustomPermissions(m apk.Manifest) []finding.Finding {
	var findings []finding.Finding
	for _, p := range m.Permissions {
		if p.Name == "" || signatureProtected(p.ProtectionLevel) {
			continue
		}
		level := p.ProtectionLevel
		if level == "" {
			level = "normal"
		}
		findings = append(findings, weakPermissionRule.newFinding(
			fmt.Sprintf("%s: %s (protectionLevel=%s)", weakPermissionRule.description, p.Name, level),
			p.Name))
	}
	return findings
}

// signatureProtected accepts both apktool's symbolic levels and the numeric form of binary decoded manifests.
func signatureProtected(level string) bool {
	level = strings.ToLower(strings.TrimSpace(level))
	if strings.Contains(level, "signature") {
		return true
	}
	if strings.HasPrefix(level, "0x") || (level != "" && level[0] >= '0' && level[0] <= '9') {
		base := apk.IntAttr(level) & 0xf
		return base == 2 || base == 3
	}
	return false
}

func hasNamed(items []apk.Named, name string) bool {
	for _, i := range items {
		if i.Name == name {
			return true
		}
	}
	return false
}
