package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	_  = iota
	KB = 1 << (10 * iota)
	MB
	GB
)

type errZipSlipDetected struct {
	Prefix   string
	JoinArgs []string
}

func (e *errZipSlipDetected) Error() string {
	return fmt.Sprintf("paths are not allowed to resolve outside of the root prefix (%q). Destination: %q", e.Prefix, e.JoinArgs)
}

// SafeJoin ensures that any destinations do not resolve to a path above the prefix path.
func SafeJoin(prefix string, dest ...string) (string, error) {
	joinResult := filepath.Join(append([]string{prefix}, dest...)...)
	cleanPrefix := filepath.Clean(prefix)
	cleanJoinResult := filepath.Clean(joinResult)
	if cleanJoinResult != cleanPrefix && !strings.HasPrefix(cleanJoinResult, cleanPrefix+string(filepath.Separator)) {
		return "", &errZipSlipDetected{
			Prefix:   prefix,
			JoinArgs: dest,
		}
	}
	return joinResult, nil
}

// IsZipSlip reports whether the error came from a path escaping its root.
func IsZipSlip(err error) bool {
	var zipSlip *errZipSlipDetected
	return errors.As(err, &zipSlip)
}
