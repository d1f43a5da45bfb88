package analysis

import (
	"fmt"
	"strings"

	"github.com/jonathan/docpack/internal/types"
)

// Thresholds controls BuildRecommendations.
type Thresholds struct {
	LowQualityScore    int
	MinConsistency     float64
	MaxRiskFactors     int
	ActionsToInclude   int
	MaxRecommendations int
	NegativeMarkers    []string
}

// DefaultThresholds returns the standard recommendation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowQualityScore:    70,
		MinConsistency:     80,
		MaxRiskFactors:     3,
		ActionsToInclude:   2,
		MaxRecommendations: 6,
		NegativeMarkers: []string{
			"misalign", "not aligned", "below market", "overpriced", "weak", "poor",
		},
	}
}

// BuildRecommendations derives a short list of recommendations from the
// documents and insights. All low-quality documents share one entry.
func BuildRecommendations(docs []types.GeneratedDocument, insights types.Insights, th Thresholds) []string {
	var out []string

	var weak []string
	for _, doc := range docs {
		if doc.Quality.Score < th.LowQualityScore {
			weak = append(weak, doc.Type.DisplayName())
		}
	}
	if len(weak) > 0 {
		out = append(out, fmt.Sprintf("Review and strengthen %s (quality score below %d)",
			joinNames(weak), th.LowQualityScore))
	}

	if insights.ConsistencyScore < th.MinConsistency {
		out = append(out, fmt.Sprintf("Align messaging across documents to improve consistency (score %.0f/100)",
			insights.ConsistencyScore))
	}

	if len(insights.RiskFactors) > th.MaxRiskFactors {
		out = append(out, fmt.Sprintf("Address the %d identified risk factors with the client before proceeding",
			len(insights.RiskFactors)))
	}

	if hasNegativeMarker(insights.MarketAlignment, th.NegativeMarkers) {
		out = append(out, "Revisit pricing and positioning: market alignment concerns were identified")
	}

	for i, action := range insights.RecommendedActions {
		if i >= th.ActionsToInclude {
			break
		}
		if action = strings.TrimSpace(action); action != "" {
			out = append(out, action)
		}
	}

	out = dedupe(out)
	if th.MaxRecommendations > 0 && len(out) > th.MaxRecommendations {
		out = out[:th.MaxRecommendations]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func hasNegativeMarker(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
