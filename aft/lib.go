/*
Package aft is the library entry point of the APK Forensic Toolkit: extract an APK into a project, analyze it,
render reports, then patch, rebuild and sign it.
*/
package aft

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/analysis"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/disassemble"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/monitor"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/logger"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/rebuild"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/version"
)

// DefaultOutputRoot holds the projects of full analyses run without an explicit output directory.
const DefaultOutputRoot = "output"

func SetLogger(logger logger.Logger) {
	log.Log = logger
}

func SetBus(b *partybus.Bus) {
	bus.Set(b)
}

type extractor interface {
	Disassemble(ctx context.Context, apkPath, outDir string, cfg disassemble.Config) (*workspace.Workspace, error)
}

// Toolkit ties the external tools to the extract, analyze, report, patch, rebuild and sign operations.
type Toolkit struct {
	fs        afero.Fs
	getter    file.Getter
	extractor extractor
	builder   *rebuild.Builder
}

// New creates a Toolkit. The getter is used for APKs given as URLs and may be nil when only local files are used.
func New(toolbox *tool.Toolbox, getter file.Getter) *Toolkit {
	return &Toolkit{
		fs:        afero.NewOsFs(),
		getter:    getter,
		extractor: disassemble.New(toolbox),
		builder:   rebuild.New(toolbox),
	}
}

// DefaultOutputDir is output/<apk name without extension>.
func DefaultOutputDir(input string) string {
	name := input
	if internal.IsRemoteSource(input) {
		name = remoteFileName(input)
	}
	stem := internal.Stem(name)
	if stem == "" || stem == "." || stem == "/" {
		stem = "app"
	}
	return filepath.Join(DefaultOutputRoot, stem)
}

// remoteFileName is the last path element of a URL, with any go-getter forcing prefix (e.g. "s3::") removed.
func remoteFileName(src string) string {
	if idx := strings.Index(src, "::"); idx >= 0 {
		src = src[idx+2:]
	}
	if u, err := url.Parse(src); err == nil {
		return path.Base(u.Path)
	}
	return path.Base(src)
}

// Extract unpacks the APK (a local path or an http(s) URL) into outDir.
func (t *Toolkit) Extract(ctx context.Context, input, outDir string, cfg disassemble.Config) (*workspace.Workspace, error) {
	if outDir == "" {
		outDir = DefaultOutputDir(input)
	}

	apkPath := input
	if internal.IsRemoteSource(input) {
		local, cleanup, err := t.download(ctx, input)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		apkPath = local
	}

	if cfg.Digest != "" {
		if err := t.verifyDigest(apkPath, cfg.Digest); err != nil {
			return nil, err
		}
	}

	ws, err := t.extractor.Disassemble(ctx, apkPath, outDir, cfg)
	if err != nil {
		removeIfEmpty(t.fs, outDir)
		return nil, err
	}
	return ws, nil
}

func (t *Toolkit) verifyDigest(apkPath, digest string) error {
	if !strings.Contains(digest, ":") {
		digest = "sha256:" + digest
	}
	valid, actual, err := file.ValidateByHash(t.fs, apkPath, strings.ToLower(digest))
	if err != nil {
		return fmt.Errorf("unable to verify APK digest: %w", err)
	}
	if !valid {
		return fmt.Errorf("APK digest mismatch: expected %q, got %q", digest, actual)
	}
	log.Debugf("APK digest verified: %s", actual)
	return nil
}

func (t *Toolkit) download(ctx context.Context, src string) (string, func(), error) {
	if t.getter == nil {
		return "", nil, fmt.Errorf("downloading %q is not supported without a getter", src)
	}

	tempDir, err := afero.TempDir(t.fs, "", internal.ApplicationName+"-download-")
	if err != nil {
		return "", nil, fmt.Errorf("unable to create download directory: %w", err)
	}
	cleanup := func() {
		if err := t.fs.RemoveAll(tempDir); err != nil {
			log.Warnf("unable to remove download directory %q: %+v", tempDir, err)
		}
	}

	name := remoteFileName(src)
	if filepath.Ext(name) != ".apk" {
		name = "download.apk"
	}
	dst := filepath.Join(tempDir, name)

	stage := progress.NewAtomicStage("downloading")
	prog := progress.NewManual(-1)
	bus.Publish(partybus.Event{
		Type:   event.TaskStarted,
		Source: src,
		Value: monitor.Task{
			Title:        "Downloading APK",
			Context:      src,
			Stage:        stage,
			Progressable: prog,
		},
	})

	log.Infof("downloading %q", src)
	if err := t.getter.GetFile(ctx, dst, src, prog); err != nil {
		prog.SetError(err)
		cleanup()
		return "", nil, fmt.Errorf("unable to download APK: %w", err)
	}
	stage.Set("downloaded")
	prog.SetCompleted()
	return dst, cleanup, nil
}

// Analyze runs the security analysis over an extracted project.
func (t *Toolkit) Analyze(ctx context.Context, projectDir string, cfg analysis.Config) (*analysis.Result, error) {
	ws, err := workspace.Open(t.fs, projectDir)
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.New(cfg)
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze(ctx, ws)
}

// Report renders the analysis result in every configured format, returning the report files written.
func Report(result analysis.Result, cfg presenter.Config, reportDir string, appConfig interface{}) ([]string, error) {
	doc, err := models.NewDocument(result, models.Descriptor{
		Name:          internal.ApplicationName,
		Version:       version.FromBuild().Version,
		Configuration: appConfig,
	})
	if err != nil {
		return nil, err
	}
	return cfg.Write(doc, reportDir)
}

// Rebuild packs the project back into an APK (default <project>/dist/<package>-rebuilt.apk).
func (t *Toolkit) Rebuild(ctx context.Context, projectDir, output string) (string, error) {
	ws, err := workspace.Open(t.fs, projectDir)
	if err != nil {
		return "", err
	}
	return t.builder.Rebuild(ctx, ws, output)
}

// Sign writes a signed copy of the APK (default <name>-signed.apk next to it).
func (t *Toolkit) Sign(ctx context.Context, apkPath string, cfg rebuild.SignConfig, output string) (*rebuild.SignResult, error) {
	return t.builder.Sign(ctx, apkPath, cfg, output)
}

// Patch applies the patch set file to the project; a dry run reports the diffs without writing.
func (t *Toolkit) Patch(projectDir, patchFile string, dryRun bool) (*rebuild.PatchResult, error) {
	ws, err := workspace.Open(t.fs, projectDir)
	if err != nil {
		return nil, err
	}
	set, err := rebuild.LoadPatchSet(t.fs, patchFile)
	if err != nil {
		return nil, err
	}
	return rebuild.Patch(ws, set, dryRun)
}

type FullAnalysisConfig struct {
	OutDir    string
	Extract   disassemble.Config
	Analysis  analysis.Config
	Report    presenter.Config
	ReportDir string
	// AppConfig is recorded in the report descriptor.
	AppConfig interface{}
}

type FullAnalysisResult struct {
	ProjectDir  string           `json:"projectDir"`
	ReportPaths []string         `json:"reportPaths"`
	Summary     finding.Summary  `json:"summary"`
	Result      *analysis.Result `json:"-"`
}

// FullAnalysis extracts (always decompiling), analyzes and reports on the APK in one go.
func (t *Toolkit) FullAnalysis(ctx context.Context, input string, cfg FullAnalysisConfig) (*FullAnalysisResult, error) {
	extractCfg := cfg.Extract
	extractCfg.Decompile = true

	ws, err := t.Extract(ctx, input, cfg.OutDir, extractCfg)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	result, err := t.Analyze(ctx, ws.Root, cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	paths, err := Report(*result, cfg.Report, cfg.ReportDir, cfg.AppConfig)
	out := &FullAnalysisResult{
		ProjectDir:  ws.Root,
		ReportPaths: paths,
		Summary:     result.Summary,
		Result:      result,
	}
	if err != nil {
		return out, fmt.Errorf("unable to write report: %w", err)
	}
	return out, nil
}

// removeIfEmpty is used to drop output directories left behind by a failed extraction.
func removeIfEmpty(fs afero.Fs, dir string) {
	if empty, err := afero.IsEmpty(fs, dir); err == nil && empty {
		_ = fs.Remove(dir)
	} else if err != nil && !os.IsNotExist(err) {
		log.Debugf("unable to inspect %q: %+v", dir, err)
	}
}
