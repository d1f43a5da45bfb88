// Package types provides type definitions for structured data used throughout the document package system.
package types

import (
	"fmt"
	"strings"
)

// DocumentType identifies one kind of document in a package.
// The set is closed; AllDocumentTypes lists every member.
type DocumentType string

// DocumentType constants
const (
	DocCoverLetter           DocumentType = "cover_letter"
	DocExplanationMemo       DocumentType = "explanation_memo"
	DocOfferAnalysis         DocumentType = "offer_analysis"
	DocNegotiationStrategy   DocumentType = "negotiation_strategy"
	DocMarketAnalysis        DocumentType = "market_analysis"
	DocRiskAssessment        DocumentType = "risk_assessment"
	DocClientSummary         DocumentType = "client_summary"
	DocCompetitiveComparison DocumentType = "competitive_comparison"
)

var allDocumentTypes = []DocumentType{
	DocCoverLetter,
	DocExplanationMemo,
	DocOfferAnalysis,
	DocNegotiationStrategy,
	DocMarketAnalysis,
	DocRiskAssessment,
	DocClientSummary,
	DocCompetitiveComparison,
}

var displayNames = map[DocumentType]string{
	DocCoverLetter:           "Cover Letter",
	DocExplanationMemo:       "Explanation Memo",
	DocOfferAnalysis:         "Offer Analysis",
	DocNegotiationStrategy:   "Negotiation Strategy",
	DocMarketAnalysis:        "Market Analysis",
	DocRiskAssessment:        "Risk Assessment",
	DocClientSummary:         "Client Summary",
	DocCompetitiveComparison: "Competitive Comparison",
}

// AllDocumentTypes returns every known document type in declaration order.
func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

// Valid reports whether t is a member of the closed set.
func (t DocumentType) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// DisplayName returns a human readable name, e.g. "Offer Analysis".
func (t DocumentType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	// unknown types still render as title case
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (t DocumentType) String() string {
	return string(t)
}

// ParseDocumentType converts a raw string into a DocumentType.
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type: %q", raw)
	}
	return t, nil
}

// ParseDocumentTypes converts raw strings into DocumentTypes, preserving order.
func ParseDocumentTypes(raw []string) ([]DocumentType, error) {
	out := make([]DocumentType, 0, len(raw))
	for _, r := range raw {
		t, err := ParseDocumentType(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
