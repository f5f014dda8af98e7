/*
Package analysis scans an extracted project for security issues: manifest configuration, source code patterns,
requested permissions and resources.
*/
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/scylladb/go-set/strset"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

type Analyzer struct {
	cfg      Config
	patterns *Patterns
}

func New(cfg Config) (*Analyzer, error) {
	patterns, err := LoadPatterns(cfg.PatternsFile)
	if err != nil {
		return nil, err
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = maxParallelism()
	}
	return &Analyzer{cfg: cfg, patterns: patterns}, nil
}

// Analyze runs every analysis over the project. Problems with individual inputs are recorded as issues on the
// result; only cancellation aborts the run.
func (a *Analyzer) Analyze(ctx context.Context, ws *workspace.Workspace) (result *Result, err error) {
	fs := ws.Fs()
	t := newTracker()
	t.publish(ws.Root)
	defer func() { t.done(err) }()

	result = &Result{Project: ws.Root}

	info, infoErr := ws.ReadInfo()
	switch {
	case errors.Is(infoErr, os.ErrNotExist):
		log.Debugf("no %s in %q", workspace.InfoFile, ws.Root)
	case infoErr != nil:
		result.Issues = append(result.Issues, infoErr.Error())
	default:
		result.Info = info
	}

	manifest, parsed := analyzeManifest(fs, ws, info)
	result.Manifest = manifest
	t.add(manifest.Findings...)
	if manifest.Error != "" {
		log.Warnf("manifest analysis of %q: %s", ws.Root, manifest.Error)
	}
	result.Issues = append(result.Issues, manifest.Issues...)

	tokens := usageTokens(manifest.Permissions, a.patterns.PermissionHints)
	scanner := &codeScanner{
		fs:       fs,
		patterns: a.patterns,
		deep:     a.cfg.Deep,
		maxSize:  a.cfg.MaxFileSize,
		workers:  a.cfg.Parallelism,
		tracker:  t,
		tokens:   allTokens(tokens),
		used:     strset.New(),
	}
	code, err := scanner.scan(ctx, ws)
	if err != nil {
		return nil, err
	}
	result.Code = code
	result.FilesAnalyzed = code.FilesAnalyzed
	result.Issues = append(result.Issues, code.Issues...)

	result.Permission = analyzePermissions(manifest.Permissions, a.patterns, tokens, scanner.used, ws.HasJava() && parsed != nil)
	t.add(result.Permission.Findings...)

	result.Resource = analyzeResources(fs, ws, a.patterns, manifest.networkSecurityConfig, a.cfg.Deep)
	t.add(result.Resource.Findings...)
	result.Issues = append(result.Issues, result.Resource.Issues...)

	all := finding.NewFindings()
	all.Add(manifest.Findings...)
	all.Add(code.Findings...)
	all.Add(result.Permission.Findings...)
	all.Add(result.Resource.Findings...)

	kept, ignored := finding.ApplyIgnoreRules(all.Sorted(), a.cfg.IgnoreRules)
	if kept == nil {
		kept = []finding.Finding{}
	}
	result.Findings = kept
	result.Ignored = ignored
	result.Summary = finding.NewSummary(kept)
	result.RiskScore = result.Summary.RiskScore

	log.Infof("analysis of %q: %d findings (%d ignored), risk score %d/100, %d files analyzed",
		ws.Root, result.Summary.Total, len(ignored), result.RiskScore, result.FilesAnalyzed)

	return result, nil
}

// Describe renders a single line summary of the result.
func (r Result) Describe() string {
	return fmt.Sprintf("%d findings (critical=%d high=%d medium=%d low=%d info=%d), risk score %d/100",
		r.Summary.Total, r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low, r.Summary.Info, r.RiskScore)
}
