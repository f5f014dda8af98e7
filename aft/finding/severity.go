package finding

import "strings"

const (
	UnknownSeverity Severity = iota
	InfoSeverity
	LowSeverity
	MediumSeverity
	HighSeverity
	CriticalSeverity
)

var severityStr = []string{
	"UNKNOWN",
	"INFO",
	"LOW",
	"MEDIUM",
	"HIGH",
	"CRITICAL",
}

// AllSeverities is ordered from most to least severe, which is the order reports list them in.
var AllSeverities = []Severity{
	CriticalSeverity,
	HighSeverity,
	MediumSeverity,
	LowSeverity,
	InfoSeverity,
}

type Severity int

func ParseSeverity(severity string) Severity {
	switch strings.TrimSpace(strings.ToLower(severity)) {
	case "info", "informational":
		return InfoSeverity
	case "low":
		return LowSeverity
	case "medium":
		return MediumSeverity
	case "high":
		return HighSeverity
	case "critical":
		return CriticalSeverity
	default:
		return UnknownSeverity
	}
}

func (f Severity) String() string {
	if int(f) >= len(severityStr) || f < 0 {
		return severityStr[0]
	}

	return severityStr[f]
}

// Weight is the contribution of a single finding of this severity to the risk score.
func (f Severity) Weight() int {
	switch f {
	case CriticalSeverity:
		return 10
	case HighSeverity:
		return 7
	case MediumSeverity:
		return 4
	case LowSeverity:
		return 2
	default:
		return 1
	}
}

func (f Severity) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Severity) UnmarshalText(text []byte) error {
	*f = ParseSeverity(string(text))
	return nil
}
