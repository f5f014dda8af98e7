package finding

// maxRiskScore caps the sum of finding weights.
const maxRiskScore = 100

// Summary tallies findings by severity.
type Summary struct {
	Total     int `json:"total"`
	Critical  int `json:"critical"`
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
	Info      int `json:"info"`
	RiskScore int `json:"riskScore"`
}

// RiskScore sums the severity weight of every finding, capped at 100.
func RiskScore(findings []Finding) int {
	var score int
	for _, f := range findings {
		score += f.Severity.Weight()
		if score >= maxRiskScore {
			return maxRiskScore
		}
	}
	return score
}

func NewSummary(findings []Finding) Summary {
	s := Summary{
		Total:     len(findings),
		RiskScore: RiskScore(findings),
	}
	for _, f := range findings {
		switch f.Severity {
		case CriticalSeverity:
			s.Critical++
		case HighSeverity:
			s.High++
		case MediumSeverity:
			s.Medium++
		case LowSeverity:
			s.Low++
		default:
			s.Info++
		}
	}
	return s
}

// Count returns the tally for a single severity.
func (s Summary) Count(severity Severity) int {
	switch severity {
	case CriticalSeverity:
		return s.Critical
	case HighSeverity:
		return s.High
	case MediumSeverity:
		return s.Medium
	case LowSeverity:
		return s.Low
	default:
		return s.Info
	}
}
