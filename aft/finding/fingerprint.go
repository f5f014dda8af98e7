package finding

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// Fingerprint identifies a finding independently of the snippet and evidence captured with it.
type Fingerprint struct {
	RuleID      string
	Type        string
	File        string
	Line        int
	Description string
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("Fingerprint(rule=%q type=%q file=%q line=%d)", f.RuleID, f.Type, f.File, f.Line)
}

func (f Fingerprint) ID() string {
	h, err := hashstructure.Hash(&f, hashstructure.FormatV2, &hashstructure.HashOptions{
		ZeroNil: true,
	})
	if err != nil {
		return ""
	}

	return fmt.Sprintf("%x", h)
}

// WithFingerprintIDs returns a copy of the findings with FingerprintID set.
func WithFingerprintIDs(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		f.FingerprintID = f.Fingerprint().ID()
		out[i] = f
	}
	return out
}
