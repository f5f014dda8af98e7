//go:build !windows
// +build !windows

package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Select is responsible for determining the specific UI to use given the user options and the environment
// (a TTY being present). The first UI returned is intended to be used; the ones that follow are fallbacks for
// when the terminal cannot be used.
func Select(verbose, quiet bool, reportWriter io.Writer) (uis []UI) {
	isStdoutATty := term.IsTerminal(int(os.Stdout.Fd()))
	isStderrATty := term.IsTerminal(int(os.Stderr.Fd()))
	notATerminal := !isStderrATty && !isStdoutATty

	switch {
	case verbose || quiet || notATerminal || !isStderrATty:
		uis = append(uis, NewLoggerUI(reportWriter, os.Stderr))
	default:
		uis = append(uis, NewEphemeralTerminalUI(reportWriter), NewLoggerUI(reportWriter, os.Stderr))
	}

	return uis
}
