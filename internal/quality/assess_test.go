package quality

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/docpack/internal/types"
)

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		docType         types.DocumentType
		wantScore       int
		wantIssues      int
		wantSuggestions []string
	}{
		{
			name:            "clean long enough letter",
			content:         words(200, "property") + " Next steps: call us.",
			docType:         types.DocCoverLetter,
			wantScore:       100,
			wantIssues:      0,
			wantSuggestions: []string{},
		},
		{
			name:       "short letter without next steps",
			content:    "Thanks for choosing us.",
			docType:    types.DocCoverLetter,
			wantScore:  80,
			wantIssues: 1,
			wantSuggestions: []string{
				"Add more detail and supporting information",
				"Include clear next steps or action items",
			},
		},
		{
			name:            "financial type without currency",
			content:         words(200, "offer") + " We recommend accepting.",
			docType:         types.DocOfferAnalysis,
			wantScore:       85,
			wantIssues:      1,
			wantSuggestions: []string{},
		},
		{
			name:            "financial type with currency",
			content:         words(200, "offer") + " Price $450,000. Action items follow.",
			docType:         types.DocMarketAnalysis,
			wantScore:       100,
			wantIssues:      0,
			wantSuggestions: []string{},
		},
		{
			name:            "too long",
			content:         words(2600, "detail") + " next step",
			docType:         types.DocClientSummary,
			wantScore:       90,
			wantIssues:      1,
			wantSuggestions: []string{},
		},
		{
			name:            "informal words counted once each",
			content:         words(200, "home") + " This is awesome stuff, yeah. Awesome! Next steps below.",
			docType:         types.DocCoverLetter,
			wantScore:       85,
			wantIssues:      3,
			wantSuggestions: []string{},
		},
		{
			name:            "informal words match whole words only",
			content:         words(200, "home") + " The supervisor coolly reviewed the superb stuffing. next steps",
			docType:         types.DocCoverLetter,
			wantScore:       100,
			wantIssues:      0,
			wantSuggestions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(tt.content, tt.docType)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Len(t, got.Issues, tt.wantIssues, "issues: %v", got.Issues)
			assert.Equal(t, tt.wantSuggestions, got.Suggestions)
		})
	}
}

func TestAssess_FloorAtZero(t *testing.T) {
	content := "gonna wanna kinda awesome stuff lol yeah cool super totally"
	got := Assess(content, types.DocOfferAnalysis)
	// 100 - 20 - 15 - 10*5
	assert.Equal(t, 15, got.Score)

	harsh := DefaultRules()
	harsh.InformalWordPenalty = 30
	assert.Equal(t, 0, harsh.Assess(content, types.DocOfferAnalysis).Score)
}

func TestAssess_EmptyContent(t *testing.T) {
	got := Assess("", types.DocRiskAssessment)
	assert.Equal(t, 80, got.Score)
	assert.Contains(t, got.Issues[0], "0 words")
}

// Property: score is always within [0, 100].
func TestAssess_ScoreBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocabulary := []string{"$", "gonna", "cool", "next", "steps", "home", "offer", "lol", "\n", "!!"}
	all := append(types.AllDocumentTypes(), "unknown")

	for i := 0; i < 500; i++ {
		var sb strings.Builder
		n := rng.Intn(3000)
		for j := 0; j < n; j++ {
			sb.WriteString(vocabulary[rng.Intn(len(vocabulary))])
			sb.WriteByte(' ')
		}
		got := Assess(sb.String(), all[rng.Intn(len(all))])
		assert.GreaterOrEqual(t, got.Score, 0)
		assert.LessOrEqual(t, got.Score, 100)
	}
}
