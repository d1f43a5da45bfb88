package analysis

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/prompts"
	"github.com/jonathan/docpack/internal/schemas"
	"github.com/jonathan/docpack/internal/types"
)

// DefaultExcerptChars is how much of each document the summarizer sees.
const DefaultExcerptChars = 500

// LLMSummarizer asks a model for package insights.
type LLMSummarizer struct {
	client       llm.Client
	excerptChars int
}

// NewLLMSummarizer creates a summarizer. excerptChars <= 0 uses DefaultExcerptChars.
func NewLLMSummarizer(client llm.Client, excerptChars int) *LLMSummarizer {
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}
	return &LLMSummarizer{client: client, excerptChars: excerptChars}
}

// Summarize implements Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, docs []types.GeneratedDocument, gc *types.GenerationContext) (json.RawMessage, error) {
	if s.client == nil {
		return nil, &SummarizeError{Message: "no LLM client configured"}
	}

	prompt, err := s.buildPrompt(docs, gc)
	if err != nil {
		return nil, &SummarizeError{Message: "failed to build prompt", Cause: err}
	}

	// TierAdvanced: cross-document reasoning
	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &SummarizeError{Message: "failed to generate insights", Cause: err}
	}

	responseText = llm.CleanJSONBlock(responseText)
	if !json.Valid([]byte(responseText)) {
		return nil, &ParseError{Message: "model returned invalid JSON"}
	}
	return json.RawMessage(responseText), nil
}

func (s *LLMSummarizer) buildPrompt(docs []types.GeneratedDocument, gc *types.GenerationContext) (string, error) {
	var excerpts strings.Builder
	for _, doc := range docs {
		excerpt, err := prompts.Render(prompts.AnalysisFile, "document-excerpt", map[string]string{
			"Title":   doc.Title,
			"Type":    string(doc.Type),
			"Score":   strconv.Itoa(doc.Quality.Score),
			"Excerpt": llm.Truncate(doc.Content, s.excerptChars),
		})
		if err != nil {
			return "", err
		}
		excerpts.WriteString(excerpt)
		excerpts.WriteString("\n")
	}

	client, property, market := "Unknown", "Unknown", "Not provided"
	if gc != nil {
		client = gc.Client.Name
		property = gc.Property.Address
		if gc.Market != nil {
			market = gc.Market.Location
			if gc.Market.PriceTrend != "" {
				market += " (" + gc.Market.PriceTrend + ")"
			}
		}
	}

	input, err := prompts.Render(prompts.AnalysisFile, "summarize-package", map[string]string{
		"Client":    client,
		"Property":  property,
		"Market":    market,
		"Documents": strings.TrimSpace(excerpts.String()),
	})
	if err != nil {
		return "", err
	}
	schema, err := schemas.Load(schemas.Insights)
	if err != nil {
		return "", err
	}
	task, err := prompts.Get(prompts.AnalysisFile, "insights-task")
	if err != nil {
		return "", err
	}
	return llm.StructuredPrompt{Task: task, Schema: schema, Rules: insightRules}.Render(input)
}

var insightRules = []string{
	"Base every statement on the documents provided; do not invent figures.",
	"consistencyScore must be a number, not a string.",
}
