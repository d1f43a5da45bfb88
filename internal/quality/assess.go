// Package quality scores generated document content with local string heuristics.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/docpack/internal/types"
)

// Rules holds the thresholds and penalties used by Assess.
type Rules struct {
	MinWords int
	MaxWords int

	LowWordPenalty       int
	HighWordPenalty      int
	MissingFinancialMark int
	InformalWordPenalty  int

	// FinancialTypes must mention a currency symbol.
	FinancialTypes map[types.DocumentType]bool
	CurrencyMarker string
	InformalWords  []string
}

// DefaultRules returns the standard heuristic rules.
func DefaultRules() Rules {
	return Rules{
		MinWords:             150,
		MaxWords:             2500,
		LowWordPenalty:       20,
		HighWordPenalty:      10,
		MissingFinancialMark: 15,
		InformalWordPenalty:  5,
		FinancialTypes: map[types.DocumentType]bool{
			types.DocOfferAnalysis:         true,
			types.DocMarketAnalysis:        true,
			types.DocNegotiationStrategy:   true,
			types.DocCompetitiveComparison: true,
		},
		CurrencyMarker: "$",
		InformalWords: []string{
			"gonna", "wanna", "kinda", "awesome", "stuff",
			"lol", "yeah", "cool", "super", "totally",
		},
	}
}

// nextStepsPattern matches content that ends with something actionable.
var nextStepsPattern = regexp.MustCompile(`(?i)next\s+steps?|action\s+items?|recommend`)

// Assess scores content with DefaultRules.
func Assess(content string, docType types.DocumentType) types.QualityAssessment {
	return DefaultRules().Assess(content, docType)
}

// Assess scores content for docType. The score starts at 100, is reduced by
// a fixed penalty per violation and is clamped to [0, 100].
func (r Rules) Assess(content string, docType types.DocumentType) types.QualityAssessment {
	score := 100
	issues := []string{}
	suggestions := []string{}

	words := types.CountWords(content)
	if words < r.MinWords {
		score -= r.LowWordPenalty
		issues = append(issues, fmt.Sprintf("Content is too short (%d words, minimum %d)", words, r.MinWords))
		suggestions = append(suggestions, "Add more detail and supporting information")
	}
	if words > r.MaxWords {
		score -= r.HighWordPenalty
		issues = append(issues, fmt.Sprintf("Content is too long (%d words, maximum %d)", words, r.MaxWords))
	}

	if r.FinancialTypes[docType] && r.CurrencyMarker != "" && !strings.Contains(content, r.CurrencyMarker) {
		score -= r.MissingFinancialMark
		issues = append(issues, "Missing financial figures")
	}

	for _, word := range findInformal(content, r.InformalWords) {
		score -= r.InformalWordPenalty
		issues = append(issues, fmt.Sprintf("Informal language detected: %q", word))
	}

	if !nextStepsPattern.MatchString(content) {
		suggestions = append(suggestions, "Include clear next steps or action items")
	}

	return types.QualityAssessment{
		Score:       clamp(score),
		Issues:      issues,
		Suggestions: suggestions,
	}
}

// findInformal returns each listed word that appears as a whole word in
// content, in list order.
func findInformal(content string, list []string) []string {
	present := make(map[string]bool)
	for _, token := range strings.FieldsFunc(strings.ToLower(content), isSeparator) {
		present[token] = true
	}

	var found []string
	for _, word := range list {
		if present[strings.ToLower(word)] {
			found = append(found, word)
		}
	}
	return found
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
