package generators

import (
	"context"
	"strings"

	"github.com/jonathan/docpack/internal/analysis"
	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/types"
)

// DefaultPriorExcerptChars bounds how much of each earlier document is
// quoted in a prompt.
const DefaultPriorExcerptChars = 1500

// defaultTiers picks the model tier per document type. Financial documents
// get the most capable model.
var defaultTiers = map[types.DocumentType]llm.ModelTier{
	types.DocCoverLetter:           llm.TierLite,
	types.DocExplanationMemo:       llm.TierStandard,
	types.DocOfferAnalysis:         llm.TierAdvanced,
	types.DocNegotiationStrategy:   llm.TierAdvanced,
	types.DocMarketAnalysis:        llm.TierAdvanced,
	types.DocRiskAssessment:        llm.TierAdvanced,
	types.DocClientSummary:         llm.TierStandard,
	types.DocCompetitiveComparison: llm.TierStandard,
}

var _ Generators = (*LLMGenerators)(nil)

// LLMGenerators generates every document type with an llm.Client.
type LLMGenerators struct {
	client     llm.Client
	priorLimit int
}

// NewLLMGenerators returns generators backed by client.
func NewLLMGenerators(client llm.Client) *LLMGenerators {
	return &LLMGenerators{client: client, priorLimit: DefaultPriorExcerptChars}
}

// WithPriorExcerptChars overrides the per-document excerpt size.
func (g *LLMGenerators) WithPriorExcerptChars(n int) *LLMGenerators {
	if n > 0 {
		g.priorLimit = n
	}
	return g
}

func (g *LLMGenerators) CoverLetter(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocCoverLetter, in)
}

func (g *LLMGenerators) ExplanationMemo(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocExplanationMemo, in)
}

func (g *LLMGenerators) OfferAnalysis(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocOfferAnalysis, in)
}

func (g *LLMGenerators) NegotiationStrategy(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocNegotiationStrategy, in)
}

func (g *LLMGenerators) MarketAnalysis(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocMarketAnalysis, in)
}

// RiskAssessment also records a best-effort overall risk level.
func (g *LLMGenerators) RiskAssessment(ctx context.Context, in Input) (*Content, error) {
	content, err := g.generate(ctx, types.DocRiskAssessment, in)
	if err != nil {
		return nil, err
	}
	content.Metadata["risk_level"] = analysis.ClassifyRiskLevel(content.Body)
	return content, nil
}

func (g *LLMGenerators) ClientSummary(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocClientSummary, in)
}

func (g *LLMGenerators) CompetitiveComparison(ctx context.Context, in Input) (*Content, error) {
	return g.generate(ctx, types.DocCompetitiveComparison, in)
}

func (g *LLMGenerators) generate(ctx context.Context, docType types.DocumentType, in Input) (*Content, error) {
	if g.client == nil {
		return nil, &GenerationError{Type: docType, Message: "no LLM client configured"}
	}

	prompt, err := buildPrompt(docType, in, g.priorLimit)
	if err != nil {
		return nil, &GenerationError{Type: docType, Message: "failed to build prompt", Cause: err}
	}

	tier := defaultTiers[docType]
	body, err := g.client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		return nil, &GenerationError{Type: docType, Message: "failed to generate content", Cause: err}
	}

	body = stripFences(body)
	if body == "" {
		return nil, &GenerationError{Type: docType, Message: "model returned an empty document"}
	}

	return &Content{
		Title: title(docType, in.Context),
		Body:  body,
		Metadata: map[string]any{
			"model":           g.client.GetModel(tier),
			"tier":            string(tier),
			"prior_documents": len(in.Prior),
		},
	}, nil
}

func title(docType types.DocumentType, gc *types.GenerationContext) string {
	if gc == nil || gc.Property.Address == "" {
		return docType.DisplayName()
	}
	return docType.DisplayName() + " - " + gc.Property.Address
}

// stripFences removes a markdown code fence wrapped around the whole body.
func stripFences(body string) string {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 && !strings.Contains(body[:idx], " ") {
		body = body[idx+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
