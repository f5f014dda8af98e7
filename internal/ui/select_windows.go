//go:build windows
// +build windows

package ui

import (
	"io"
	"os"
)

// Select returns the logger UI only; the ephemeral terminal UI relies on cursor control sequences.
func Select(verbose, quiet bool, reportWriter io.Writer) (uis []UI) {
	return append(uis, NewLoggerUI(reportWriter, os.Stderr))
}
