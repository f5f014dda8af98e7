package analysis

import (
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// DefaultMaxFileSize bounds the size of a single source file that is scanned.
const DefaultMaxFileSize = 2 << 20

type Config struct {
	// Deep also scans smali when java sources exist, enables INFO level rules and inspects asset content types.
	Deep bool
	// PatternsFile replaces the built-in rule set when set.
	PatternsFile string
	// Parallelism is the number of files scanned concurrently (0 selects the number of CPUs).
	Parallelism int
	// MaxFileSize skips larger source files (0 selects DefaultMaxFileSize).
	MaxFileSize int64
	IgnoreRules []finding.IgnoreRule
}
