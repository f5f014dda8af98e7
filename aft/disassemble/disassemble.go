/*
Package disassemble unpacks an APK into a project directory: metadata, decoded manifest, raw resources, apktool
(smali) output and, optionally, jadx (java) output.
*/
package disassemble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/monitor"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const stepCount = 6

type Config struct {
	// Decompile runs jadx into java/ in addition to apktool.
	Decompile bool
	// MaxEntrySize bounds every file extracted from the archive (0 selects apk.DefaultMaxEntrySize).
	MaxEntrySize uint64
	// Digest, when set ("sha256:<hex>"), must match the input APK before anything is extracted.
	Digest string
}

// Disassembler performs extraction. The inspection functions are swappable so the tool orchestration can be
// exercised without real APK fixtures.
type Disassembler struct {
	toolbox        *tool.Toolbox
	fs             afero.Fs
	parse          func(path string) (*apk.Info, error)
	decodeManifest func(path string) ([]byte, error)
	extract        func(path, prefix, dst string, maxEntrySize uint64) (int, error)
}

func New(toolbox *tool.Toolbox) *Disassembler {
	return &Disassembler{
		toolbox:        toolbox,
		fs:             afero.NewOsFs(),
		parse:          apk.Parse,
		decodeManifest: apk.DecodeManifestXML,
		extract:        apk.ExtractPrefix,
	}
}

// Disassemble extracts the given APK into outDir and returns the resulting project.
func (d *Disassembler) Disassemble(ctx context.Context, apkPath, outDir string, cfg Config) (*workspace.Workspace, error) {
	if err := d.toolbox.Require(d.toolbox.Apktool.Tool); err != nil {
		return nil, err
	}
	if cfg.Decompile {
		if err := d.toolbox.Require(d.toolbox.Jadx.Tool); err != nil {
			return nil, err
		}
	}

	stage := progress.NewAtomicStage("")
	prog := progress.NewManual(stepCount)
	defer prog.SetCompleted()

	bus.Publish(partybus.Event{
		Type:   event.ExtractionStarted,
		Source: apkPath,
		Value: monitor.Extraction{
			APK:          apkPath,
			Stage:        stage,
			Progressable: prog,
		},
	})

	step := func(name string) {
		stage.Set(name)
		log.Debugf("extraction of %q: %s", apkPath, name)
	}

	step("inspecting")
	info, err := d.parse(apkPath)
	if err != nil {
		prog.SetError(err)
		return nil, err
	}
	prog.Increment()

	step("copying")
	ws, err := workspace.Create(d.fs, outDir)
	if err != nil {
		prog.SetError(err)
		return nil, err
	}
	if err := file.CopyFile(d.fs, apkPath, ws.Path(workspace.OriginalDir, filepath.Base(apkPath))); err != nil {
		err = fmt.Errorf("unable to copy APK into project: %w", err)
		prog.SetError(err)
		return nil, err
	}
	d.writeDecodedManifest(apkPath, ws)
	prog.Increment()

	step("extracting resources")
	if err := d.extractRaw(apkPath, ws, cfg.MaxEntrySize); err != nil {
		prog.SetError(err)
		return nil, err
	}
	prog.Increment()

	step("running apktool")
	if err := d.toolbox.Apktool.Decode(ctx, apkPath, ws.Path(workspace.SmaliDir)); err != nil {
		err = fmt.Errorf("apktool failed to decode %q: %w", apkPath, err)
		prog.SetError(err)
		return nil, err
	}
	d.preferApktoolManifest(ws)
	prog.Increment()

	if cfg.Decompile {
		step("running jadx")
		if err := d.decompile(ctx, apkPath, ws); err != nil {
			prog.SetError(err)
			return nil, err
		}
	}
	prog.Increment()

	step("writing metadata")
	if err := ws.WriteInfo(*info); err != nil {
		prog.SetError(err)
		return nil, err
	}
	prog.Increment()

	step("done")
	log.Infof("extracted %q (package=%q version=%q) into %q", apkPath, info.PackageName, info.VersionName, outDir)
	return ws, nil
}

// writeDecodedManifest stores the binary-decoded manifest. Failure is tolerated since apktool produces its own copy.
func (d *Disassembler) writeDecodedManifest(apkPath string, ws *workspace.Workspace) {
	content, err := d.decodeManifest(apkPath)
	var resErr *apk.ResourcesError
	switch {
	case errors.As(err, &resErr):
		log.Warnf("manifest resource references left unresolved: %+v", resErr)
	case err != nil:
		log.Warnf("unable to decode manifest of %q: %+v", apkPath, err)
		return
	}
	if len(content) == 0 {
		return
	}

	dst := ws.Path(workspace.ManifestDir, workspace.ManifestFile)
	if err := afero.WriteFile(d.fs, dst, content, 0644); err != nil {
		log.Warnf("unable to write decoded manifest: %+v", err)
	}
}

func (d *Disassembler) extractRaw(apkPath string, ws *workspace.Workspace, maxEntrySize uint64) error {
	targets := []struct {
		prefix string
		dir    string
	}{
		{prefix: "res/", dir: workspace.ResourcesDir},
		{prefix: "assets/", dir: workspace.AssetsDir},
		{prefix: "lib/", dir: workspace.LibsDir},
	}

	for _, t := range targets {
		n, err := d.extract(apkPath, t.prefix, ws.Path(t.dir), maxEntrySize)
		if err != nil {
			return fmt.Errorf("unable to extract %q entries: %w", t.prefix, err)
		}
		log.Debugf("extracted %d %q entries", n, t.prefix)
	}
	return nil
}

// preferApktoolManifest replaces the binary-decoded manifest with apktool's text manifest, which carries fully
// resolved resource names.
func (d *Disassembler) preferApktoolManifest(ws *workspace.Workspace) {
	src := ws.Path(workspace.SmaliDir, workspace.ManifestFile)
	if !file.Exists(d.fs, src) {
		return
	}
	if err := file.CopyFile(d.fs, src, ws.Path(workspace.ManifestDir, workspace.ManifestFile)); err != nil {
		log.Warnf("unable to copy apktool manifest: %+v", err)
	}
}

// decompile runs jadx. jadx exits non-zero when a subset of classes fail to decompile, so the failure only counts
// when nothing was produced.
func (d *Disassembler) decompile(ctx context.Context, apkPath string, ws *workspace.Workspace) error {
	err := d.toolbox.Jadx.Decompile(ctx, apkPath, ws.Path(workspace.JavaDir))
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && ws.HasJava() {
		log.Warnf("jadx finished with errors, continuing with partial output: %+v", err)
		return nil
	}
	return fmt.Errorf("jadx failed to decompile %q: %w", apkPath, err)
}
