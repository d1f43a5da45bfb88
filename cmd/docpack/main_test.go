package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/types"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const requestYAML = `
document_types: [client_summary, offer_analysis]
context:
  client:
    name: Jane Buyer
    type: buyer
    budget: 500000
  property:
    address: 12 Oak Lane
    city: Austin
    state: TX
    price: 450000
    square_feet: 2000
  agent:
    name: Sam Agent
  offer:
    amount: 440000
    closing_date: 2026-06-30T00:00:00Z
options:
  tone: friendly
`

func TestLoadRequestFile_YAML(t *testing.T) {
	req, err := loadRequestFile(writeFile(t, "request.yaml", requestYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"client_summary", "offer_analysis"}, req.DocumentTypes)
	assert.Equal(t, "Jane Buyer", req.Context.Client.Name)
	assert.Equal(t, 2000, req.Context.Property.SquareFeet)
	require.NotNil(t, req.Context.Offer)
	assert.Equal(t, 2026, req.Context.Offer.ClosingDate.Year())
	require.NotNil(t, req.Options)
	assert.Equal(t, types.ToneFriendly, req.Options.Tone)
}

func TestLoadRequestFile_JSON(t *testing.T) {
	path := writeFile(t, "request.json", `{
		"document_types": ["risk_assessment"],
		"context": {
			"client": {"name": "Jane"},
			"property": {"address": "12 Oak Lane", "price": 1},
			"agent": {"name": "Sam"}
		}
	}`)

	req, err := loadRequestFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"risk_assessment"}, req.DocumentTypes)
	assert.Nil(t, req.Options)
}

func TestLoadRequestFile_Errors(t *testing.T) {
	_, err := loadRequestFile("/nonexistent/request.json")
	assert.ErrorContains(t, err, "failed to read request file")

	_, err = loadRequestFile(writeFile(t, "bad.json", `{nope`))
	assert.ErrorContains(t, err, "failed to parse request file")

	_, err = loadRequestFile(writeFile(t, "empty.yaml", "document_types: [cover_letter]\n"))
	assert.ErrorContains(t, err, "has no context")
}

func TestParseTypeList(t *testing.T) {
	got, err := parseTypeList([]string{"offer_analysis, Market_Analysis", "", "client_summary"})
	require.NoError(t, err)
	assert.Equal(t, []types.DocumentType{types.DocOfferAnalysis, types.DocMarketAnalysis, types.DocClientSummary}, got)

	_, err = parseTypeList([]string{"haiku"})
	assert.ErrorContains(t, err, "unknown document type")
}

func TestResolveCommand(t *testing.T) {
	out, err := executeCommand(t, "resolve", "client_summary,offer_analysis")
	require.NoError(t, err)
	assert.Contains(t, out, "GENERATION ORDER")
	assert.Contains(t, out, "Offer Analysis")
	assert.Contains(t, out, "Client Summary")
	assert.Less(t, bytes.Index([]byte(out), []byte("Offer Analysis")), bytes.Index([]byte(out), []byte("Client Summary")))
}

func TestResolveCommand_UnknownType(t *testing.T) {
	_, err := executeCommand(t, "resolve", "haiku")
	assert.ErrorContains(t, err, "unknown document type")
}

func TestTypesCommand(t *testing.T) {
	out, err := executeCommand(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "REQUIRED BY")
	for _, dt := range types.AllDocumentTypes() {
		assert.Contains(t, out, string(dt))
		assert.Contains(t, out, dt.DisplayName())
	}

	var market string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "market_analysis ") {
			market = line
		}
	}
	require.NotEmpty(t, market)
	assert.Contains(t, market, "negotiation_strategy, risk_assessment, competitive_comparison")
}

func TestGenerateCommand_Offline(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DOCPACK_API_KEY", "")
	t.Setenv("DOCPACK_LOG_LEVEL", "error")

	input := writeFile(t, "request.yaml", requestYAML)
	output := filepath.Join(t.TempDir(), "result.json")

	out, err := executeCommand(t, "generate", "--offline", "--quiet", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "DOCUMENT PACKAGE")
	assert.Contains(t, out, "Wrote "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var result types.PackageResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, types.PackageStatusSuccess, result.Status)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, types.DocOfferAnalysis, result.Documents[0].Type)
	assert.Equal(t, 2, result.Metadata.FallbackCount)
	// no summarizer, so analysis uses the default insights
	assert.NotEmpty(t, result.Insights.KeyThemes)
}
