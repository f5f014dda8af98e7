package ui

import (
	"io"

	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/parsers"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

type loggerUI struct {
	unsubscribe        func() error
	reportOutput       io.Writer
	notificationOutput io.Writer
}

// NewLoggerUI writes all events to the common application logger and writes reports to the given writer.
func NewLoggerUI(reportWriter, notificationWriter io.Writer) UI {
	return &loggerUI{
		reportOutput:       reportWriter,
		notificationOutput: notificationWriter,
	}
}

func (l *loggerUI) Setup(unsubscribe func() error) error {
	l.unsubscribe = unsubscribe
	return nil
}

func (l loggerUI) Handle(e partybus.Event) error {
	switch e.Type {
	case event.CLIReport:
		if err := handleCLIReport(e, l.reportOutput); err != nil {
			log.Warnf("unable to show report: %+v", err)
		}
	case event.CLINotification:
		if err := handleCLINotification(e, l.notificationOutput); err != nil {
			log.Warnf("unable to show notification: %+v", err)
		}
	case event.AppUpdateAvailable:
		update, err := parsers.ParseAppUpdateAvailable(e)
		if err != nil {
			log.Warnf("bad %s event: %+v", e.Type, err)
			return nil
		}
		log.Warnf("a newer version is available: %s (running %s)", update.New, update.Current)
	case event.TaskStarted:
		if task, err := parsers.ParseTaskStarted(e); err == nil {
			log.Debugf("%s: %s", task.Title, task.Context)
		}
	case event.CLIExit:
		// this is the last expected event, stop listening to events
		return l.unsubscribe()
	}
	return nil
}

func (l loggerUI) Teardown(_ bool) error {
	return nil
}
