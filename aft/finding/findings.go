package finding

import (
	"sort"
	"sync"
)

// Findings is a de-duplicated collection of findings, safe for concurrent use.
type Findings struct {
	lock          *sync.RWMutex
	byFingerprint map[string]Finding
}

func NewFindings(findings ...Finding) Findings {
	f := Findings{
		lock:          &sync.RWMutex{},
		byFingerprint: make(map[string]Finding),
	}
	f.Add(findings...)
	return f
}

// Add stores the given findings, returning how many of them were not already present.
func (r Findings) Add(findings ...Finding) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	var added int
	for _, f := range findings {
		fp := f.Fingerprint().ID()
		if _, exists := r.byFingerprint[fp]; exists {
			continue
		}
		r.byFingerprint[fp] = f
		added++
	}
	return added
}

func (r Findings) Merge(other Findings) {
	r.Add(other.Sorted()...)
}

func (r Findings) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byFingerprint)
}

func (r Findings) Sorted() []Finding {
	r.lock.RLock()
	out := make([]Finding, 0, len(r.byFingerprint))
	for _, f := range r.byFingerprint {
		out = append(out, f)
	}
	r.lock.RUnlock()

	sort.Sort(ByElements(out))
	return out
}

// BySeverity groups the sorted findings by severity.
func (r Findings) BySeverity() map[Severity][]Finding {
	out := make(map[Severity][]Finding)
	for _, f := range r.Sorted() {
		out[f.Severity] = append(out[f.Severity], f)
	}
	return out
}

// CountAtOrAbove reports how many findings have a severity of at least the given value.
func (r Findings) CountAtOrAbove(severity Severity) int {
	return CountAtOrAbove(r.Sorted(), severity)
}

func CountAtOrAbove(findings []Finding, severity Severity) int {
	var count int
	for _, f := range findings {
		if f.Severity >= severity {
			count++
		}
	}
	return count
}
