package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSONFunc(ctx, prompt, tier)
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }
func (m *MockLLMClient) Close() error                  { return nil }

func staticSummarizer(raw string, err error) Summarizer {
	return SummarizerFunc(func(context.Context, []types.GeneratedDocument, *types.GenerationContext) (json.RawMessage, error) {
		return json.RawMessage(raw), err
	})
}

func TestAnalyze_ValidInsights(t *testing.T) {
	a := NewAnalyzer(staticSummarizer(`{
		"keyThemes": ["Competitive pricing"],
		"consistencyScore": 91.5,
		"recommendedActions": ["Submit offer today"],
		"marketAlignment": "Priced at market",
		"strategicPosition": "Strong buyer position",
		"riskFactors": []
	}`, nil), logging.NewTest(t))

	insights, report := a.AnalyzeWithReport(context.Background(), nil, nil)
	assert.False(t, report.Degraded())
	assert.Equal(t, []string{"Competitive pricing"}, insights.KeyThemes)
	assert.Equal(t, 91.5, insights.ConsistencyScore)
	assert.Equal(t, []string{"Submit offer today"}, insights.RecommendedActions)
	assert.Equal(t, "Priced at market", insights.MarketAlignment)
	assert.Equal(t, "Strong buyer position", insights.StrategicPosition)
	assert.Empty(t, insights.RiskFactors)
	assert.NotNil(t, insights.RiskFactors)
}

// A missing field resolves to its default, not a zero value.
func TestAnalyze_MissingRiskFactors(t *testing.T) {
	a := NewAnalyzer(staticSummarizer(`{
		"keyThemes": ["Pricing"],
		"consistencyScore": 88,
		"recommendedActions": ["Call lender"],
		"marketAlignment": "Aligned",
		"strategicPosition": "Good"
	}`, nil), nil)

	insights, report := a.AnalyzeWithReport(context.Background(), nil, nil)
	assert.Equal(t, DefaultInsights().RiskFactors, insights.RiskFactors)
	assert.Equal(t, []string{FieldRiskFactors}, report.Defaulted)
	assert.Equal(t, []string{"Pricing"}, insights.KeyThemes)
}

func TestAnalyze_WrongShapesUseDefaults(t *testing.T) {
	a := NewAnalyzer(staticSummarizer(`{
		"keyThemes": "pricing, timing",
		"consistencyScore": "very high",
		"recommendedActions": [1, 2],
		"marketAlignment": ["aligned"],
		"strategicPosition": "",
		"riskFactors": null
	}`, nil), nil)

	insights, report := a.AnalyzeWithReport(context.Background(), nil, nil)
	assert.Equal(t, DefaultInsights(), insights)
	assert.Len(t, report.Defaulted, 6)
}

func TestAnalyze_ScoreClamped(t *testing.T) {
	insights, _ := ParseInsights(json.RawMessage(`{"consistencyScore": 140}`))
	assert.Equal(t, 100.0, insights.ConsistencyScore)

	insights, _ = ParseInsights(json.RawMessage(`{"consistencyScore": -3}`))
	assert.Equal(t, 0.0, insights.ConsistencyScore)
}

func TestAnalyze_UndecodableScoreIsReported(t *testing.T) {
	insights, report := ParseInsights(json.RawMessage(`{
		"keyThemes": ["Pricing"],
		"consistencyScore": 1e400,
		"recommendedActions": ["Call lender"],
		"marketAlignment": "Aligned",
		"strategicPosition": "Good",
		"riskFactors": []
	}`))

	assert.Equal(t, float64(DefaultConsistencyScore), insights.ConsistencyScore)
	assert.Equal(t, []string{FieldConsistencyScore}, report.Defaulted)
	assert.True(t, report.Degraded())
	assert.Equal(t, []string{"Pricing"}, insights.KeyThemes)
}

func TestAnalyze_FailuresUseDefaults(t *testing.T) {
	tests := []struct {
		name       string
		summarizer Summarizer
	}{
		{"collaborator error", staticSummarizer("", errors.New("model overloaded"))},
		{"not json", staticSummarizer("the package looks good", nil)},
		{"json array", staticSummarizer(`["a"]`, nil)},
		{"json null", staticSummarizer(`null`, nil)},
		{"nil summarizer", nil},
		{"panicking summarizer", SummarizerFunc(func(context.Context, []types.GeneratedDocument, *types.GenerationContext) (json.RawMessage, error) {
			panic("boom")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.summarizer, logging.NewTest(t))
			insights, report := a.AnalyzeWithReport(context.Background(), nil, nil)
			assert.Equal(t, DefaultInsights(), insights)
			assert.Len(t, report.Defaulted, 6)
			assert.Error(t, report.Err)

			insights, _ = a.AnalyzeWithReport(context.Background(), nil, nil)
			assert.Equal(t, DefaultInsights(), insights)
		})
	}
}

func TestDefaultInsights_FreshSlices(t *testing.T) {
	a := DefaultInsights()
	a.KeyThemes[0] = "changed"
	assert.NotEqual(t, "changed", DefaultInsights().KeyThemes[0])
}

func TestLLMSummarizer(t *testing.T) {
	docs := []types.GeneratedDocument{
		{
			Type:    types.DocOfferAnalysis,
			Title:   "Offer Analysis",
			Content: strings.Repeat("a", 600) + "TAIL",
			Quality: types.QualityAssessment{Score: 90},
		},
	}
	gc := &types.GenerationContext{
		Client:   types.Client{Name: "Jane Buyer"},
		Property: types.Property{Address: "12 Oak Lane"},
		Market:   &types.MarketData{Location: "Austin, TX", PriceTrend: "rising"},
	}

	var gotPrompt string
	var gotTier llm.ModelTier
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			gotPrompt, gotTier = prompt, tier
			return "```json\n{\"consistencyScore\": 77}\n```", nil
		},
	}

	raw, err := NewLLMSummarizer(client, 0).Summarize(context.Background(), docs, gc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"consistencyScore": 77}`, string(raw))
	assert.Equal(t, llm.TierAdvanced, gotTier)
	assert.Contains(t, gotPrompt, "Jane Buyer")
	assert.Contains(t, gotPrompt, "12 Oak Lane")
	assert.Contains(t, gotPrompt, "Austin, TX (rising)")
	assert.Contains(t, gotPrompt, "### Offer Analysis (offer_analysis, quality 90)")
	assert.Contains(t, gotPrompt, strings.Repeat("a", 500)+"...")
	assert.NotContains(t, gotPrompt, "TAIL")
	assert.Contains(t, gotPrompt, `"riskFactors"`)
}

func TestLLMSummarizer_Errors(t *testing.T) {
	_, err := NewLLMSummarizer(nil, 0).Summarize(context.Background(), nil, nil)
	var sumErr *SummarizeError
	require.ErrorAs(t, err, &sumErr)

	failing := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "", errors.New("quota")
	}}
	_, err = NewLLMSummarizer(failing, 0).Summarize(context.Background(), nil, nil)
	require.ErrorAs(t, err, &sumErr)

	garbage := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "not json at all", nil
	}}
	_, err = NewLLMSummarizer(garbage, 0).Summarize(context.Background(), nil, nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
