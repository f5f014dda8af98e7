package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/logger"
	aftUI "github.com/protalal11-ops/apk-forensic-toolkit/ui"
)

// ephemeralTerminalUI provides an "ephemeral" terminal user interface to display the application state dynamically.
// The terminal cursor is manipulated to allow for a dynamic, multi-line UI (provided by the jotframe lib), for this
// reason all other application mechanisms that write to the screen must be suppressed before starting (such as logs).
//
// This UI is driven off of events from the event bus, creating single-line terminal widgets for each published
// monitor and polling it for the latest state. All handler goroutines must be finished before the UI exits
// (coordinated with a sync.WaitGroup).
type ephemeralTerminalUI struct {
	unsubscribe   func() error
	handler       *aftUI.Handler
	waitGroup     *sync.WaitGroup
	frame         *frame.Frame
	logBuffer     *bytes.Buffer
	uiOutput      *os.File
	reportOutput  io.Writer
	notifications []partybus.Event
}

// NewEphemeralTerminalUI writes all events to a TUI and writes reports to the given writer.
func NewEphemeralTerminalUI(reportWriter io.Writer) UI {
	return &ephemeralTerminalUI{
		handler:      aftUI.NewHandler(),
		waitGroup:    &sync.WaitGroup{},
		uiOutput:     os.Stderr,
		reportOutput: reportWriter,
	}
}

func (h *ephemeralTerminalUI) Setup(unsubscribe func() error) error {
	h.unsubscribe = unsubscribe
	hideCursor(h.uiOutput)

	// prep the logger to not clobber the screen from now on (logrus only)
	h.logBuffer = bytes.NewBufferString("")
	logWrapper, ok := log.Log.(*logger.LogrusLogger)
	if ok {
		logWrapper.Logger.SetOutput(h.logBuffer)
	}

	return h.openScreen()
}

func (h *ephemeralTerminalUI) Handle(e partybus.Event) error {
	ctx := context.Background()
	switch {
	case h.handler.RespondsTo(e):
		if err := h.handler.Handle(ctx, h.frame, e, h.waitGroup); err != nil {
			log.Errorf("unable to show %s event: %+v", e.Type, err)
		}

	case e.Type == event.AppUpdateAvailable:
		if err := handleAppUpdateAvailable(ctx, h.frame, e, h.waitGroup); err != nil {
			log.Errorf("unable to show %s event: %+v", e.Type, err)
		}

	case e.Type == event.CLIReport:
		// reports go to stdout, the terminal state must be reset before writing them
		h.closeScreen(false)

		if err := handleCLIReport(e, h.reportOutput); err != nil {
			log.Errorf("unable to show %s event: %+v", e.Type, err)
		}

	case e.Type == event.CLINotification:
		// shown once the screen is closed
		h.notifications = append(h.notifications, e)

	case e.Type == event.CLIExit:
		// this is the last expected event, stop listening to events
		return h.unsubscribe()
	}
	return nil
}

func (h *ephemeralTerminalUI) openScreen() error {
	config := frame.Config{
		PositionPolicy: frame.PolicyFloatForward,
		// only report output to stderr, reserve report output for stdout
		Output: h.uiOutput,
	}

	fr, err := frame.New(config)
	if err != nil {
		return fmt.Errorf("failed to create the screen object: %w", err)
	}
	h.frame = fr

	return nil
}

func (h *ephemeralTerminalUI) closeScreen(force bool) {
	// we may have other background processes still displaying progress, wait for them to
	// finish before discontinuing dynamic content and showing the final report
	if !h.frame.IsClosed() {
		if !force {
			h.waitGroup.Wait()
		}
		h.frame.Close()
		frame.Close()

		// only flush the log on close
		h.flushLog()
	}
}

func (h *ephemeralTerminalUI) flushLog() {
	// flush any errors to the screen before the report
	logWrapper, ok := log.Log.(*logger.LogrusLogger)
	if ok {
		fmt.Fprint(logWrapper.Output, h.logBuffer.String())
		logWrapper.Logger.SetOutput(h.uiOutput)
	} else {
		fmt.Fprint(h.uiOutput, h.logBuffer.String())
	}
	h.logBuffer.Reset()
}

func (h *ephemeralTerminalUI) Teardown(force bool) error {
	h.closeScreen(force)
	showCursor(h.uiOutput)

	for _, e := range h.notifications {
		if err := handleCLINotification(e, h.uiOutput); err != nil {
			log.Errorf("unable to show %s event: %+v", e.Type, err)
		}
	}
	return nil
}

func hideCursor(output io.Writer) {
	fmt.Fprint(output, "\x1b[?25l")
}

func showCursor(output io.Writer) {
	fmt.Fprint(output, "\x1b[?25h")
}
