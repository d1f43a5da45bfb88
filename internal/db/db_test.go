package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/types"
)

func samplePackage() *types.PackageResult {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.PackageResult{
		Status: types.PackageStatusSuccess,
		Documents: []types.GeneratedDocument{
			{
				ID:      uuid.New(),
				Type:    types.DocOfferAnalysis,
				Title:   "Offer Analysis",
				Content: "The offer of $450,000 is strong.",
				Metadata: types.DocumentMetadata{
					WordCount: 7,
					Version:   types.VersionStandard,
					Extra:     map[string]any{"model": "lite"},
				},
				Quality: types.QualityAssessment{Score: 85, Issues: []string{"short"}, Suggestions: []string{}},
			},
			{
				Type:     types.DocMarketAnalysis,
				Title:    "Market Analysis",
				Content:  "fallback",
				Metadata: types.DocumentMetadata{Version: types.VersionFallback},
			},
		},
		Metadata: types.PackageMetadata{
			PackageID:      uuid.New(),
			StartedAt:      started,
			CompletedAt:    started.Add(2 * time.Second),
			DurationMs:     2000,
			RequestedCount: 2,
			GeneratedCount: 2,
			FallbackCount:  1,
			Order:          []types.DocumentType{types.DocOfferAnalysis, types.DocMarketAnalysis},
		},
		Insights: types.Insights{
			KeyThemes:        []string{"pricing"},
			ConsistencyScore: 0.8,
			MarketAlignment:  "aligned",
		},
		Recommendations: []string{"Review and strengthen Market Analysis"},
	}
}

func TestEncodeDecodePackage(t *testing.T) {
	in := samplePackage()

	row, err := encodePackage("client-1", in)
	require.NoError(t, err)
	assert.Equal(t, in.Metadata.PackageID, row.ID)
	assert.Equal(t, "client-1", row.ClientID)
	assert.JSONEq(t, `["offer_analysis","market_analysis"]`, string(row.Order))
	assert.JSONEq(t, `[]`, string(row.Errors))

	out, err := decodePackage(row, in.Documents)
	require.NoError(t, err)
	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.Metadata.Order, out.Metadata.Order)
	assert.Equal(t, in.Metadata.FallbackCount, out.Metadata.FallbackCount)
	assert.Equal(t, in.Insights.KeyThemes, out.Insights.KeyThemes)
	assert.Equal(t, in.Recommendations, out.Recommendations)
	assert.Nil(t, out.Errors)
	assert.Len(t, out.Documents, 2)
}

func TestEncodePackage_NilSlices(t *testing.T) {
	row, err := encodePackage("", &types.PackageResult{Status: types.PackageStatusFailed})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(row.Order))
	assert.JSONEq(t, `[]`, string(row.Recommendations))
}

func TestDecodePackage_KeepsErrors(t *testing.T) {
	in := &types.PackageResult{Status: types.PackageStatusFailed, Errors: []string{"cycle detected"}}
	row, err := encodePackage("", in)
	require.NoError(t, err)

	out, err := decodePackage(row, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cycle detected"}, out.Errors)
	assert.NotNil(t, out.Documents)
	assert.Empty(t, out.Documents)
}

func TestDecodePackage_BadJSON(t *testing.T) {
	_, err := decodePackage(packageRow{Insights: []byte("{nope")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal insights")
}

func TestEncodeDecodeDocument(t *testing.T) {
	pkg := samplePackage()
	doc := pkg.Documents[0]

	row, err := encodeDocument(pkg.Metadata.PackageID, 0, doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, row.ID)
	assert.Equal(t, "offer_analysis", row.DocumentType)
	assert.Equal(t, 85, row.QualityScore)
	assert.False(t, row.IsFallback)

	out, err := decodeDocument(row)
	require.NoError(t, err)
	assert.Equal(t, doc.Type, out.Type)
	assert.Equal(t, doc.Content, out.Content)
	assert.Equal(t, doc.Quality, out.Quality)
	assert.Equal(t, "lite", out.Metadata.Extra["model"])
}

func TestEncodeDocument_AssignsIDAndFallback(t *testing.T) {
	pkg := samplePackage()

	row, err := encodeDocument(pkg.Metadata.PackageID, 1, pkg.Documents[1])
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, 1, row.Position)
	assert.True(t, row.IsFallback)
}

func TestDecodeDocument_BadJSON(t *testing.T) {
	_, err := decodeDocument(documentRow{Quality: []byte("[")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal quality")
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost:notaport/docpack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database URL")
}

func TestOptions(t *testing.T) {
	var o options
	WithMaxConns(8)(&o)
	WithInsertWorkers(2)(&o)
	assert.Equal(t, int32(8), o.maxConns)
	assert.Equal(t, 2, o.insertWorkers)
}
