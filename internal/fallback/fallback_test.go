package fallback

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/types"
)

func TestGenerate_AllTypes(t *testing.T) {
	cause := errors.New("model unavailable")
	seen := make(map[string]types.DocumentType)

	for _, docType := range types.AllDocumentTypes() {
		doc := Generate(docType, cause)

		assert.Equal(t, docType, doc.Type)
		assert.Equal(t, docType.DisplayName(), doc.Title)
		assert.NotEmpty(t, doc.Content)
		assert.True(t, doc.IsFallback())
		assert.Equal(t, Score, doc.Quality.Score)
		require.Len(t, doc.Quality.Issues, 2)
		assert.Equal(t, IssueFallbackUsed, doc.Quality.Issues[0])
		assert.Equal(t, "Generation error: model unavailable", doc.Quality.Issues[1])
		assert.NotEmpty(t, doc.Quality.Suggestions)
		assert.Equal(t, types.CountWords(doc.Content), doc.Metadata.WordCount)
		assert.Equal(t, uuid.Nil, doc.ID)
		assert.True(t, doc.Metadata.GeneratedAt.IsZero())

		other, dup := seen[doc.Content]
		assert.False(t, dup, "%s shares its template with %s", docType, other)
		seen[doc.Content] = docType
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	cause := errors.New("timeout")
	for _, docType := range append(types.AllDocumentTypes(), "unknown_type") {
		assert.Equal(t, Generate(docType, cause), Generate(docType, cause))
	}
}

func TestGenerate_UnknownType(t *testing.T) {
	doc := Generate("closing_checklist", errors.New("boom"))

	assert.Equal(t, "Closing Checklist", doc.Title)
	assert.Contains(t, doc.Content, "could not be generated automatically")
	assert.True(t, doc.IsFallback())
}

func TestGenerate_NilCause(t *testing.T) {
	doc := Generate(types.DocCoverLetter, nil)
	assert.Equal(t, []string{IssueFallbackUsed, "Generation error: unknown"}, doc.Quality.Issues)
}

func TestGenerate_SuggestionsNotShared(t *testing.T) {
	a := Generate(types.DocCoverLetter, nil)
	a.Quality.Suggestions[0] = "changed"

	b := Generate(types.DocCoverLetter, nil)
	assert.NotEqual(t, "changed", b.Quality.Suggestions[0])
}
