package finding

import "sort"

var _ sort.Interface = (*ByElements)(nil)

// ByElements orders findings by severity (most severe first), then category, file, line and rule.
type ByElements []Finding

func (m ByElements) Len() int {
	return len(m)
}

func (m ByElements) Less(i, j int) bool {
	a, b := m[i], m[j]
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	return a.Description < b.Description
}

func (m ByElements) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}
