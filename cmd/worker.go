package cmd

import (
	"context"
	"os"

	"github.com/pkg/profile"
	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/parsers"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/ui"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/version"
)

// runWorker runs the given work in the background while the UI renders the events it publishes. The work context
// is cancelled on SIGINT/SIGTERM.
func runWorker(work func(ctx context.Context) error) error {
	defer startProfiling()()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error)
	go func() {
		defer close(errs)
		defer bus.Exit()

		checkForApplicationUpdate(ctx)

		if err := work(ctx); err != nil {
			errs <- err
		}
	}()

	return eventLoop(
		errs,
		setupSignals(),
		eventSubscription,
		cancel,
		ui.Select(isVerbose(), appConfig.Quiet, os.Stdout)...,
	)
}

func startProfiling() (stop func()) {
	switch {
	case appConfig.Dev.ProfileCPU:
		return profile.Start(profile.CPUProfile).Stop
	case appConfig.Dev.ProfileMem:
		return profile.Start(profile.MemProfile).Stop
	}
	return func() {}
}

func checkForApplicationUpdate(ctx context.Context) {
	if !appConfig.CheckForAppUpdate {
		return
	}

	log.Debugf("checking if a new version of %s is available", internal.ApplicationName)
	isAvailable, newVersion, err := version.IsUpdateAvailable(ctx)
	if err != nil {
		// this should never stop the application
		log.Debugf("unable to check for an application update: %+v", err)
		return
	}
	if isAvailable {
		log.Infof("new version of %s is available: %s (current version is %s)", internal.ApplicationName, newVersion, version.FromBuild().Version)

		bus.Publish(partybus.Event{
			Type: event.AppUpdateAvailable,
			Value: parsers.UpdateCheck{
				New:     newVersion,
				Current: version.FromBuild().Version,
			},
		})
	} else {
		log.Debugf("no new %s update available", internal.ApplicationName)
	}
}

func newToolbox() (*tool.Toolbox, error) {
	return tool.NewToolbox(appConfig.Tools.ToConfig(), nil)
}

func newToolkit() (*aft.Toolkit, error) {
	toolbox, err := newToolbox()
	if err != nil {
		return nil, err
	}
	userAgent := internal.ApplicationName + "/" + version.FromBuild().Version
	return aft.New(toolbox, file.NewGetter(userAgent, nil)), nil
}
