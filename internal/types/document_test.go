package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedDocument_Clone(t *testing.T) {
	orig := GeneratedDocument{
		Title:    "Offer Analysis",
		Metadata: DocumentMetadata{Extra: map[string]any{"source": "model"}},
		Quality:  QualityAssessment{Score: 80, Issues: []string{"short"}, Suggestions: []string{"expand"}},
	}

	c := orig.Clone()
	c.Metadata.Extra["source"] = "changed"
	c.Quality.Issues[0] = "changed"
	c.Quality.Suggestions[0] = "changed"

	assert.Equal(t, "model", orig.Metadata.Extra["source"])
	assert.Equal(t, []string{"short"}, orig.Quality.Issues)
	assert.Equal(t, []string{"expand"}, orig.Quality.Suggestions)
	assert.Equal(t, orig.Title, c.Title)
}

func TestGeneratedDocument_CloneKeepsNil(t *testing.T) {
	c := GeneratedDocument{}.Clone()
	assert.Nil(t, c.Metadata.Extra)
	assert.Nil(t, c.Quality.Issues)
}
