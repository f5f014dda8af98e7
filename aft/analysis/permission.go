package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

const androidPermissionPrefix = "android.permission."

var (
	dangerousPermissionRule = ruleMeta{
		ID:             "AFT-PERM-001",
		Type:           "DANGEROUS_PERMISSION",
		Description:    "Dangerous permission",
		Recommendation: "Verify the permission is required and request it at runtime only when needed",
		CWE:            "CWE-250",
		severity:       finding.MediumSeverity,
	}
	unusedPermissionRule = ruleMeta{
		ID:             "AFT-PERM-002",
		Type:           "UNUSED_PERMISSION",
		Description:    "Permission appears unused",
		Recommendation: "Remove permissions the application does not need",
		CWE:            "CWE-250",
		severity:       finding.LowSeverity,
	}
)

// usageTokens lists, per permission, the strings whose presence in java sources counts as using it: the permission
// name, its Manifest.permission constant and any configured API hints.
func usageTokens(permissions []string, hints map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range permissions {
		tokens := []string{p}
		if strings.HasPrefix(p, androidPermissionPrefix) {
			tokens = append(tokens, "permission."+strings.TrimPrefix(p, androidPermissionPrefix))
		}
		tokens = append(tokens, hints[p]...)
		out[p] = tokens
	}
	return out
}

func allTokens(byPermission map[string][]string) []string {
	set := strset.New()
	for _, tokens := range byPermission {
		set.Add(tokens...)
	}
	tokens := set.List()
	sort.Strings(tokens)
	return tokens
}

// analyzePermissions flags dangerous permissions and, when decompiled java is available, android permissions that
// no source file appears to use.
func analyzePermissions(permissions []string, patterns *Patterns, tokens map[string][]string, used *strset.Set, usageChecked bool) PermissionResult {
	result := PermissionResult{
		Permissions:  append([]string{}, permissions...),
		Dangerous:    []string{},
		Unused:       []string{},
		UsageChecked: usageChecked,
		Findings:     []finding.Finding{},
	}

	declared := strset.New(permissions...)
	dangerous := strset.Intersection(declared, strset.New(patterns.DangerousPermissions...)).List()
	sort.Strings(dangerous)

	for _, p := range dangerous {
		f := dangerousPermissionRule.newFinding(finding.PermissionCategory, manifestFile, 0, "", p)
		f.Description = fmt.Sprintf("%s: %s", dangerousPermissionRule.Description, p)
		result.Findings = append(result.Findings, f)
		result.Dangerous = append(result.Dangerous, p)
	}

	if !usageChecked {
		return result
	}

	for _, p := range permissions {
		if !strings.HasPrefix(p, androidPermissionPrefix) || used.HasAny(tokens[p]...) {
			continue
		}
		f := unusedPermissionRule.newFinding(finding.PermissionCategory, manifestFile, 0, "", p)
		f.Description = fmt.Sprintf("%s: %s", unusedPermissionRule.Description, p)
		result.Findings = append(result.Findings, f)
		result.Unused = append(result.Unused, p)
	}

	return result
}
