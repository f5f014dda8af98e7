package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v2"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

const (
	Java  Language = "java"
	Smali Language = "smali"
)

// Language is the kind of source a rule applies to.
type Language string

//go:embed patterns.yaml
var defaultPatterns []byte

// Patterns is the rule set driving code, permission and resource analysis.
type Patterns struct {
	ExcludePaths         []string            `yaml:"exclude-paths"`
	LineRules            []LineRule          `yaml:"line-rules"`
	FileRules            []FileRule          `yaml:"file-rules"`
	DangerousPermissions []string            `yaml:"dangerous-permissions"`
	PermissionHints      map[string][]string `yaml:"permission-hints"`
	SecretResourceNames  []string            `yaml:"secret-resource-names"`

	secretNames []*regexp.Regexp
}

type ruleMeta struct {
	ID             string     `yaml:"id"`
	Type           string     `yaml:"type"`
	Severity       string     `yaml:"severity"`
	Languages      []Language `yaml:"languages"`
	Paths          []string   `yaml:"paths"`
	Deep           bool       `yaml:"deep"`
	Description    string     `yaml:"description"`
	Recommendation string     `yaml:"recommendation"`
	CWE            string     `yaml:"cwe"`

	severity finding.Severity
}

// LineRule matches a regular expression against single lines.
type LineRule struct {
	ruleMeta `yaml:",inline"`
	Pattern  string `yaml:"pattern"`
	Exclude  string `yaml:"exclude"`

	pattern *regexp.Regexp
	exclude *regexp.Regexp
}

// FileRule matches literal tokens against a whole file.
type FileRule struct {
	ruleMeta `yaml:",inline"`
	Require  []string `yaml:"require"`
	Absent   []string `yaml:"absent"`
	Anchor   string   `yaml:"anchor"`
}

// DefaultPatterns returns the built-in rule set.
func DefaultPatterns() (*Patterns, error) {
	return ParsePatterns(defaultPatterns)
}

// LoadPatterns reads a rule set from the given file, or the built-in rule set when path is empty.
func LoadPatterns(path string) (*Patterns, error) {
	if path == "" {
		return DefaultPatterns()
	}
	by, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read patterns file: %w", err)
	}
	p, err := ParsePatterns(by)
	if err != nil {
		return nil, fmt.Errorf("invalid patterns file %q: %w", path, err)
	}
	return p, nil
}

func ParsePatterns(by []byte) (*Patterns, error) {
	var p Patterns
	if err := yaml.UnmarshalStrict(by, &p); err != nil {
		return nil, err
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Patterns) compile() error {
	var errs error
	ids := make(map[string]struct{})

	for _, g := range p.ExcludePaths {
		if !validGlob(g) {
			errs = multierror.Append(errs, fmt.Errorf("bad exclude path %q", g))
		}
	}

	for i := range p.LineRules {
		r := &p.LineRules[i]
		if err := r.ruleMeta.validate(ids); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		var err error
		if r.pattern, err = regexp.Compile(r.Pattern); err != nil || r.Pattern == "" {
			errs = multierror.Append(errs, fmt.Errorf("rule %s: bad pattern %q: %v", r.ID, r.Pattern, err))
		}
		if r.Exclude != "" {
			if r.exclude, err = regexp.Compile(r.Exclude); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("rule %s: bad exclude %q: %w", r.ID, r.Exclude, err))
			}
		}
	}

	for i := range p.FileRules {
		r := &p.FileRules[i]
		if err := r.ruleMeta.validate(ids); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if len(r.Require) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("rule %s: at least one required token is needed", r.ID))
		}
		if r.Anchor == "" && len(r.Require) > 0 {
			r.Anchor = r.Require[0]
		}
	}

	for _, expr := range p.SecretResourceNames {
		re, err := regexp.Compile(expr)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("bad secret resource name %q: %w", expr, err))
			continue
		}
		p.secretNames = append(p.secretNames, re)
	}

	return errs
}

func (m *ruleMeta) validate(ids map[string]struct{}) error {
	if m.ID == "" {
		return fmt.Errorf("rule without id (type=%q)", m.Type)
	}
	if _, ok := ids[m.ID]; ok {
		return fmt.Errorf("duplicate rule id %s", m.ID)
	}
	ids[m.ID] = struct{}{}

	m.severity = finding.ParseSeverity(m.Severity)
	if m.severity == finding.UnknownSeverity {
		return fmt.Errorf("rule %s: unknown severity %q", m.ID, m.Severity)
	}
	if len(m.Languages) == 0 {
		m.Languages = []Language{Java}
	}
	for _, l := range m.Languages {
		if l != Java && l != Smali {
			return fmt.Errorf("rule %s: unknown language %q", m.ID, l)
		}
	}
	for _, g := range m.Paths {
		if !validGlob(g) {
			return fmt.Errorf("rule %s: bad path pattern %q", m.ID, g)
		}
	}
	return nil
}

// applies reports whether the rule is active for the given file.
func (m ruleMeta) applies(lang Language, rel string, deep bool) bool {
	if m.Deep && !deep {
		return false
	}
	var langOK bool
	for _, l := range m.Languages {
		if l == lang {
			langOK = true
			break
		}
	}
	if !langOK {
		return false
	}
	if len(m.Paths) == 0 {
		return true
	}
	return matchesAny(m.Paths, rel)
}

func (m ruleMeta) newFinding(category finding.Category, file string, line int, snippet, evidence string) finding.Finding {
	return finding.Finding{
		RuleID:         m.ID,
		Type:           m.Type,
		Severity:       m.severity,
		Category:       category,
		Description:    m.Description,
		File:           file,
		Line:           line,
		Snippet:        truncate(snippet, maxSnippetLength),
		Evidence:       truncate(evidence, maxSnippetLength),
		Recommendation: m.Recommendation,
		CWE:            m.CWE,
	}
}

func (p Patterns) excluded(rel string) bool {
	return matchesAny(p.ExcludePaths, rel)
}

func (p Patterns) isSecretResourceName(name string) bool {
	for _, re := range p.secretNames {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesAny(globs []string, rel string) bool {
	rel = strings.TrimPrefix(rel, "/")
	for _, g := range globs {
		ok, err := doublestar.Match(g, rel)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func validGlob(g string) bool {
	_, err := doublestar.Match(g, "x")
	return err == nil
}

const maxSnippetLength = 200

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
