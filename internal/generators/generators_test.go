package generators

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "Document body. Next steps: call your agent.", nil
}

func (m *MockLLMClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return "{}", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-" + string(tier) }
func (m *MockLLMClient) Close() error                       { return nil }

func sampleContext() *types.GenerationContext {
	return &types.GenerationContext{
		Client:   types.Client{Name: "Jane Buyer", Type: "buyer", Budget: 500000, Preferences: []string{"garage"}},
		Property: types.Property{Address: "12 Oak Lane", City: "Austin", State: "TX", Price: 450000, SquareFeet: 2100, Bedrooms: 3, Bathrooms: 2.5},
		Agent:    types.Agent{Name: "Sam Agent", Brokerage: "Acme Realty", YearsExperience: 8},
		Offer: &types.Offer{
			Amount:        440000,
			EarnestMoney:  10000,
			Contingencies: []string{"inspection", "financing"},
			ClosingDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNewTable_CoversEveryType(t *testing.T) {
	table := NewTable(NewLLMGenerators(&MockLLMClient{}))
	assert.Empty(t, table.Missing())
	assert.Len(t, table, len(types.AllDocumentTypes()))
}

// One interface method per document type.
func TestGeneratorsInterface_MethodPerType(t *testing.T) {
	iface := reflect.TypeOf((*Generators)(nil)).Elem()
	assert.Equal(t, len(types.AllDocumentTypes()), iface.NumMethod())

	for _, docType := range types.AllDocumentTypes() {
		name := strings.ReplaceAll(docType.DisplayName(), " ", "")
		_, ok := iface.MethodByName(name)
		assert.True(t, ok, "missing method %s for %s", name, docType)
	}
}

func TestTable_GenerateUnknown(t *testing.T) {
	table := Table{}
	_, err := table.Generate(context.Background(), types.DocCoverLetter, Input{})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.DocCoverLetter, genErr.Type)
	assert.Equal(t, types.AllDocumentTypes(), table.Missing())
}

func TestLLMGenerators_Generate(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			gotPrompt, gotTier = prompt, tier
			return "```markdown\n# Offer Analysis\nThe offer of $440,000 is fair.\n```", nil
		},
	}

	in := Input{
		Context: sampleContext(),
		Options: types.DefaultGenerationOptions(),
		Prior: map[types.DocumentType]types.GeneratedDocument{
			types.DocMarketAnalysis: {Title: "Market Analysis", Content: "Median price is $455,000."},
		},
	}

	content, err := NewTable(NewLLMGenerators(client)).Generate(context.Background(), types.DocOfferAnalysis, in)
	require.NoError(t, err)

	assert.Equal(t, "Offer Analysis - 12 Oak Lane", content.Title)
	assert.Equal(t, "# Offer Analysis\nThe offer of $440,000 is fair.", content.Body)
	assert.Equal(t, llm.TierAdvanced, gotTier)
	assert.Equal(t, "mock-advanced", content.Metadata["model"])
	assert.Equal(t, 1, content.Metadata["prior_documents"])

	assert.Contains(t, gotPrompt, "Jane Buyer")
	assert.Contains(t, gotPrompt, "List price: $450,000")
	assert.Contains(t, gotPrompt, "Amount: $440,000")
	assert.Contains(t, gotPrompt, "Contingencies: inspection, financing")
	assert.Contains(t, gotPrompt, "Closing date: March 15, 2026")
	assert.Contains(t, gotPrompt, "Median price is $455,000.")
	assert.Contains(t, gotPrompt, "Next Steps section")
	assert.Contains(t, gotPrompt, "professional tone")
	assert.NotContains(t, gotPrompt, "{{.")
}

func TestLLMGenerators_OptionsToggleSections(t *testing.T) {
	var gotPrompt string
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			gotPrompt = prompt
			return "body", nil
		},
	}

	opts := types.GenerationOptions{Tone: types.ToneFriendly}
	_, err := NewLLMGenerators(client).CoverLetter(context.Background(), Input{Context: sampleContext(), Options: opts})
	require.NoError(t, err)

	assert.Contains(t, gotPrompt, "friendly tone")
	assert.NotContains(t, gotPrompt, "Requirements:")
	assert.NotContains(t, gotPrompt, "Previously generated documents")
	assert.Contains(t, gotPrompt, "Market:\nNot provided")
}

func TestLLMGenerators_RiskLevel(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "Risks...\nOverall risk level: High", nil
		},
	}

	content, err := NewLLMGenerators(client).RiskAssessment(context.Background(), Input{Context: sampleContext()})
	require.NoError(t, err)
	assert.Equal(t, "high", content.Metadata["risk_level"])
}

func TestLLMGenerators_Errors(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		cause := errors.New("deadline exceeded")
		client := &MockLLMClient{
			GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) { return "", cause },
		}
		_, err := NewLLMGenerators(client).MarketAnalysis(context.Background(), Input{Context: sampleContext()})
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, types.DocMarketAnalysis, genErr.Type)
	})

	t.Run("empty body", func(t *testing.T) {
		client := &MockLLMClient{
			GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) { return "  ```\n```  ", nil },
		}
		_, err := NewLLMGenerators(client).ClientSummary(context.Background(), Input{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty document")
	})

	t.Run("no client", func(t *testing.T) {
		_, err := NewLLMGenerators(nil).CoverLetter(context.Background(), Input{})
		require.Error(t, err)
	})
}

func TestLLMGenerators_PriorExcerptLimit(t *testing.T) {
	var gotPrompt string
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			gotPrompt = prompt
			return "body", nil
		},
	}

	in := Input{
		Context: sampleContext(),
		Prior: map[types.DocumentType]types.GeneratedDocument{
			types.DocOfferAnalysis: {Title: "Offer Analysis", Content: strings.Repeat("x", 50) + "HIDDEN"},
		},
	}
	_, err := NewLLMGenerators(client).WithPriorExcerptChars(50).ClientSummary(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, strings.Repeat("x", 50)+"...")
	assert.NotContains(t, gotPrompt, "HIDDEN")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$450,000", Money(450000))
	assert.Equal(t, "$1,235", Money(1234.5))
	assert.Equal(t, "$0", Money(0))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "hello", stripFences("```\nhello\n```"))
	assert.Equal(t, "hello", stripFences("```markdown\nhello\n```"))
	assert.Equal(t, "plain text", stripFences("  plain text "))
}

func TestBuildPrompt_FillsEveryPlaceholder(t *testing.T) {
	prior := map[types.DocumentType]types.GeneratedDocument{
		types.DocOfferAnalysis: {Type: types.DocOfferAnalysis, Title: "Offer Analysis", Content: "Offer is fair."},
	}
	for _, docType := range types.AllDocumentTypes() {
		t.Run(string(docType), func(t *testing.T) {
			prompt, err := buildPrompt(docType, Input{Context: sampleContext(), Prior: prior}, 200)
			require.NoError(t, err)
			assert.NotContains(t, prompt, "{{.")
			assert.Contains(t, prompt, "12 Oak Lane")
		})
	}
}
