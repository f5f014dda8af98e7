package monitor

import (
	"github.com/wagoodman/go-progress"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// Extraction tracks the stages of unpacking an APK into a project directory.
type Extraction struct {
	APK   string
	Stage progress.Stager
	progress.Progressable
}

// Analysis tracks the progress of the security analysis over a project directory.
type Analysis struct {
	Project            string
	FilesProcessed     progress.Progressable
	FindingsDiscovered progress.Monitorable
	BySeverity         map[finding.Severity]progress.Monitorable
}

// Task is a generic long running step (rebuild, sign, patch, download).
type Task struct {
	Title   string
	Context string
	Stage   progress.Stager
	progress.Progressable
}
