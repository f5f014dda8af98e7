package finding

import (
	"github.com/bmatcuk/doublestar/v2"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

// An IgnoredFinding is a Finding that has been ignored because one or more IgnoreRules applied to it.
type IgnoredFinding struct {
	Finding

	// AppliedIgnoreRules are the rules that caused the finding to be ignored.
	AppliedIgnoreRules []IgnoreRule `json:"appliedIgnoreRules"`
}

// An IgnoreRule specifies criteria for a finding to meet in order to be
// ignored. Not all criteria (fields) need to be specified, but all specified
// criteria must be met by the finding in order for the rule to apply.
type IgnoreRule struct {
	RuleID   string `yaml:"rule" json:"rule" mapstructure:"rule"`
	Type     string `yaml:"type" json:"type" mapstructure:"type"`
	Severity string `yaml:"severity" json:"severity" mapstructure:"severity"`
	Category string `yaml:"category" json:"category" mapstructure:"category"`
	File     string `yaml:"file" json:"file" mapstructure:"file"` // doublestar glob against the finding path
	Reason   string `yaml:"reason" json:"reason" mapstructure:"reason"`
}

// ApplyIgnoreRules splits the given findings into the ones that are kept and the ones that at least one rule ignores.
func ApplyIgnoreRules(findings []Finding, rules []IgnoreRule) ([]Finding, []IgnoredFinding) {
	var kept []Finding
	var ignored []IgnoredFinding

	for _, f := range findings {
		var applicable []IgnoreRule
		for _, rule := range rules {
			if rule.Ignores(f) {
				applicable = append(applicable, rule)
			}
		}

		if len(applicable) > 0 {
			ignored = append(ignored, IgnoredFinding{
				Finding:            f,
				AppliedIgnoreRules: applicable,
			})
			continue
		}

		kept = append(kept, f)
	}

	return kept, ignored
}

// Ignores reports whether every criterion given in the rule holds for the finding. A rule without criteria ignores nothing.
func (r IgnoreRule) Ignores(f Finding) bool {
	conditions := getIgnoreConditionsForRule(r)
	if len(conditions) == 0 {
		return false
	}

	for _, condition := range conditions {
		if !condition(f) {
			return false
		}
	}
	return true
}

type ignoreCondition func(f Finding) bool

func getIgnoreConditionsForRule(rule IgnoreRule) []ignoreCondition {
	var conditions []ignoreCondition

	if id := rule.RuleID; id != "" {
		conditions = append(conditions, func(f Finding) bool { return f.RuleID == id })
	}

	if t := rule.Type; t != "" {
		conditions = append(conditions, func(f Finding) bool { return f.Type == t })
	}

	if s := rule.Severity; s != "" {
		sev := ParseSeverity(s)
		conditions = append(conditions, func(f Finding) bool { return f.Severity == sev })
	}

	if c := rule.Category; c != "" {
		conditions = append(conditions, func(f Finding) bool { return string(f.Category) == c })
	}

	if pattern := rule.File; pattern != "" {
		conditions = append(conditions, ifFileApplies(pattern))
	}

	return conditions
}

func ifFileApplies(pattern string) ignoreCondition {
	return func(f Finding) bool {
		if f.File == "" {
			return false
		}
		matches, err := doublestar.Match(pattern, f.File)
		if err != nil {
			log.Warnf("bad ignore rule file pattern %q: %+v", pattern, err)
			return false
		}
		return matches
	}
}
