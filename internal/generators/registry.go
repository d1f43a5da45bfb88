// Package generators defines the per-document-type content generators and
// the dispatch table the pipeline uses to call them.
package generators

import (
	"context"

	"github.com/jonathan/docpack/internal/types"
)

// Input is everything a generator may read. Prior holds documents already
// produced in this run, keyed by type; it is a copy and may be retained.
type Input struct {
	Context *types.GenerationContext
	Options types.GenerationOptions
	Prior   map[types.DocumentType]types.GeneratedDocument
}

// PriorDocument returns the prior document of type t, if present.
func (in Input) PriorDocument(t types.DocumentType) (types.GeneratedDocument, bool) {
	doc, ok := in.Prior[t]
	return doc, ok
}

// Content is a generator's output. The pipeline turns it into a
// GeneratedDocument by adding identity, metadata and a quality assessment.
type Content struct {
	Title    string
	Body     string
	Metadata map[string]any
}

// GenerateFunc produces the content of one document.
type GenerateFunc func(ctx context.Context, in Input) (*Content, error)

// Generators has exactly one method per document type. Adding a document
// type means adding a method here, which every implementation must then
// provide before the module compiles.
type Generators interface {
	CoverLetter(ctx context.Context, in Input) (*Content, error)
	ExplanationMemo(ctx context.Context, in Input) (*Content, error)
	OfferAnalysis(ctx context.Context, in Input) (*Content, error)
	NegotiationStrategy(ctx context.Context, in Input) (*Content, error)
	MarketAnalysis(ctx context.Context, in Input) (*Content, error)
	RiskAssessment(ctx context.Context, in Input) (*Content, error)
	ClientSummary(ctx context.Context, in Input) (*Content, error)
	CompetitiveComparison(ctx context.Context, in Input) (*Content, error)
}

// Table maps each document type to its generator.
type Table map[types.DocumentType]GenerateFunc

// NewTable builds the dispatch table for g.
func NewTable(g Generators) Table {
	return Table{
		types.DocCoverLetter:           g.CoverLetter,
		types.DocExplanationMemo:       g.ExplanationMemo,
		types.DocOfferAnalysis:         g.OfferAnalysis,
		types.DocNegotiationStrategy:   g.NegotiationStrategy,
		types.DocMarketAnalysis:        g.MarketAnalysis,
		types.DocRiskAssessment:        g.RiskAssessment,
		types.DocClientSummary:         g.ClientSummary,
		types.DocCompetitiveComparison: g.CompetitiveComparison,
	}
}

// Generate dispatches to the generator for docType.
func (t Table) Generate(ctx context.Context, docType types.DocumentType, in Input) (*Content, error) {
	fn, ok := t[docType]
	if !ok || fn == nil {
		return nil, &GenerationError{Type: docType, Message: "no generator registered"}
	}
	return fn(ctx, in)
}

// Missing returns the known document types without a generator.
func (t Table) Missing() []types.DocumentType {
	var out []types.DocumentType
	for _, docType := range types.AllDocumentTypes() {
		if fn, ok := t[docType]; !ok || fn == nil {
			out = append(out, docType)
		}
	}
	return out
}
