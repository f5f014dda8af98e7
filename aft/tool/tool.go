package tool

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/hashicorp/go-version"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

var versionPattern = regexp.MustCompile(`(?P<version>\d+\.\d+(\.\d+)*)`)

// Options is the user-facing configuration of a single external tool.
type Options struct {
	Path    string        `yaml:"path" json:"path" mapstructure:"path"`          // explicit executable location (default: look up on PATH)
	Args    string        `yaml:"args" json:"args" mapstructure:"args"`          // extra global arguments, shell-quoted
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // zero means no timeout
}

// Tool describes an external executable that aft drives through its command line.
type Tool struct {
	Name        string
	Path        string
	Args        []string
	Timeout     time.Duration
	MinVersion  string
	VersionArgs []string
}

func newTool(name string, opts Options, minVersion string, versionArgs ...string) (Tool, error) {
	args, err := shlex.Split(opts.Args)
	if err != nil {
		return Tool{}, fmt.Errorf("unable to parse %s arguments %q: %w", name, opts.Args, err)
	}
	return Tool{
		Name:        name,
		Path:        opts.Path,
		Args:        args,
		Timeout:     opts.Timeout,
		MinVersion:  minVersion,
		VersionArgs: versionArgs,
	}, nil
}

// Resolve returns the executable location for the tool, either the configured path or a PATH lookup of the tool name.
func (t Tool) Resolve() (string, error) {
	candidate := t.Path
	if candidate == "" {
		candidate = t.Name
	}
	p, err := exec.LookPath(candidate)
	if err != nil {
		return "", fmt.Errorf("%s (%s): %w", t.Name, candidate, afterr.ErrToolNotFound)
	}
	return p, nil
}

// Status is the result of checking a tool installation.
type Status struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Found        bool   `json:"found"`
	Version      string `json:"version"`
	MinVersion   string `json:"minVersion"`
	MeetsMinimum bool   `json:"meetsMinimum"`
}

// Check locates the tool and, when it supports reporting a version, compares it against the minimum version.
// A version below the minimum is reported but never treated as an error.
func Check(ctx context.Context, executor Executor, t Tool) Status {
	status := Status{
		Name:         t.Name,
		MinVersion:   t.MinVersion,
		MeetsMinimum: true,
	}

	p, err := executor.Locate(t)
	if err != nil {
		status.MeetsMinimum = false
		return status
	}
	status.Path = p
	status.Found = true

	if len(t.VersionArgs) == 0 {
		return status
	}

	out, err := executor.Output(ctx, Command{Tool: t, Args: t.VersionArgs, SkipToolArgs: true})
	if err != nil {
		log.Debugf("unable to determine %s version: %+v", t.Name, err)
		return status
	}

	status.Version = ParseVersion(string(out))
	status.MeetsMinimum = meetsMinimum(status.Version, t.MinVersion)
	if !status.MeetsMinimum {
		log.Warnf("%s version %s is older than the minimum supported version %s", t.Name, status.Version, t.MinVersion)
	}
	return status
}

// ParseVersion returns the first dotted version number found in the given tool output.
func ParseVersion(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if v, ok := matchVersion(line); ok {
			return v
		}
	}
	return ""
}

func matchVersion(line string) (string, bool) {
	m := versionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[versionPattern.SubexpIndex("version")], true
}

func meetsMinimum(actual, minimum string) bool {
	if minimum == "" || actual == "" {
		return true
	}
	a, err := version.NewVersion(actual)
	if err != nil {
		return true
	}
	constraint, err := version.NewConstraint(">= " + minimum)
	if err != nil {
		return true
	}
	return constraint.Check(a)
}
