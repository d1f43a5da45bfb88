package analysis

import (
	"regexp"
	"strings"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// DefaultRiskLevel is returned when no level can be recognised.
const DefaultRiskLevel = RiskMedium

var riskLevelPattern = regexp.MustCompile(`(?i)overall\s+risk(?:\s+level|\s+rating)?[\s*_:\-]*(?:is\s+)?[\s*_]*(low|moderate|medium|high)\b`)

// ClassifyRiskLevel extracts an overall risk level from free text such as
// "Overall risk level: High". It is best effort: anything it cannot
// recognise returns DefaultRiskLevel.
func ClassifyRiskLevel(text string) string {
	m := riskLevelPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultRiskLevel
	}
	switch strings.ToLower(m[1]) {
	case "low":
		return RiskLow
	case "high":
		return RiskHigh
	default:
		return RiskMedium
	}
}
