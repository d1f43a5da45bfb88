// Package analysis derives package-level insights and recommendations from a
// completed set of documents. It degrades to documented defaults instead of
// returning errors.
package analysis

import "github.com/jonathan/docpack/internal/types"

// DefaultConsistencyScore is used when the collaborator gives no usable score.
const DefaultConsistencyScore = 85

// DefaultInsights returns the static insight values used when analysis is
// unavailable. Each call returns fresh slices.
func DefaultInsights() types.Insights {
	return types.Insights{
		KeyThemes:          defaultKeyThemes(),
		ConsistencyScore:   DefaultConsistencyScore,
		RecommendedActions: defaultRecommendedActions(),
		MarketAlignment:    "Documents align with current market conditions",
		StrategicPosition:  "Well-positioned for successful transaction",
		RiskFactors:        defaultRiskFactors(),
	}
}

func defaultKeyThemes() []string {
	return []string{
		"Professional real estate representation",
		"Client-focused approach",
		"Market-informed strategy",
	}
}

func defaultRecommendedActions() []string {
	return []string{
		"Review all documents for accuracy",
		"Customize content for specific client needs",
		"Follow up with client within 24 hours",
	}
}

func defaultRiskFactors() []string {
	return []string{
		"Market volatility",
		"Financing contingencies",
		"Inspection findings",
	}
}
