package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/parsers"
)

func handleCLIReport(event partybus.Event, reportOutput io.Writer) error {
	_, report, err := parsers.ParseCLIReport(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	if _, err := io.WriteString(reportOutput, report); err != nil {
		return fmt.Errorf("unable to show report: %w", err)
	}
	return nil
}

func handleCLINotification(event partybus.Event, output io.Writer) error {
	_, message, err := parsers.ParseCLINotification(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	if _, err := io.WriteString(output, message); err != nil {
		return fmt.Errorf("unable to show notification: %w", err)
	}
	return nil
}
