/*
Package rebuild turns an extracted project back into an installable APK: apktool rebuild, source patching and
(re)signing.
*/
package rebuild

import (
	"context"
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

// Builder drives apktool and the signing tools. Signature verification is swappable so signing can be exercised
// without real APK fixtures.
type Builder struct {
	toolbox *tool.Toolbox
	fs      afero.Fs
	verify  func(path string) (*apk.Signature, error)
}

func New(toolbox *tool.Toolbox) *Builder {
	return &Builder{
		toolbox: toolbox,
		fs:      afero.NewOsFs(),
		verify:  apk.VerifySignature,
	}
}

// Rebuild packs the apktool output of the project into an APK. An empty output selects
// <project>/dist/<package>-rebuilt.apk.
func (b *Builder) Rebuild(ctx context.Context, ws *workspace.Workspace, output string) (string, error) {
	if err := b.toolbox.Require(b.toolbox.Apktool.Tool); err != nil {
		return "", err
	}
	if !ws.HasSmali() {
		return "", fmt.Errorf("project %q has no apktool output in %s/", ws.Root, workspace.SmaliDir)
	}

	if output == "" {
		output = ws.Path(workspace.DistDir, packageName(ws)+"-rebuilt.apk")
	}
	if err := b.fs.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	stage, prog := publishTask("Rebuilding APK", ws.Root, 1)
	defer prog.SetCompleted()

	stage.Set("apktool build")
	if err := b.toolbox.Apktool.Build(ctx, ws.Path(workspace.SmaliDir), output); err != nil {
		prog.SetError(err)
		return "", fmt.Errorf("unable to rebuild APK: %w", err)
	}
	if !file.Exists(b.fs, output) {
		err := fmt.Errorf("apktool reported success but %q was not created", output)
		prog.SetError(err)
		return "", err
	}
	prog.Increment()
	stage.Set("done")

	log.Infof("rebuilt APK written to %q", output)
	return output, nil
}

func packageName(ws *workspace.Workspace) string {
	info, err := ws.ReadInfo()
	if err != nil || info.PackageName == "" {
		log.Debugf("no package name recorded for %q, naming the APK after the project", ws.Root)
		return filepath.Base(filepath.Clean(ws.Root))
	}
	return info.PackageName
}

func publishTask(title, context string, steps int64) (*progress.AtomicStage, *progress.Manual) {
	stage := progress.NewAtomicStage("")
	prog := progress.NewManual(steps)

	bus.Publish(partybus.Event{
		Type:   event.TaskStarted,
		Source: context,
		Value: monitor.Task{
			Title:        title,
			Context:      context,
			Stage:        stage,
			Progressable: prog,
		},
	})
	return stage, prog
}
