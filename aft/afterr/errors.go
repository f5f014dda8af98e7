package afterr

import "errors"

var (
	// ErrAboveSeverityThreshold indicates when a finding severity is discovered that is equal
	// or above the given --fail-on severity value.
	ErrAboveSeverityThreshold = NewExpectedErr("discovered findings at or above the severity threshold")

	// ErrToolNotFound indicates that a required external executable is not on the PATH (or configured path).
	ErrToolNotFound = errors.New("external tool not found")

	// ErrNotAProject indicates that a directory was not produced by the extract command.
	ErrNotAProject = errors.New("not an extracted project directory")

	// ErrNotAnAPK indicates that the input is not a ZIP archive carrying an AndroidManifest.xml.
	ErrNotAnAPK = errors.New("not an APK file")
)
