package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/types"
)

func TestGet_EveryDocumentTypeHasPrompt(t *testing.T) {
	ClearCache()

	for _, docType := range types.AllDocumentTypes() {
		prompt, err := Get(DocumentsFile, string(docType))
		require.NoError(t, err, docType)
		assert.Contains(t, prompt, "{{.Client}}")
		assert.Contains(t, prompt, "{{.Prior}}")
	}
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(DocumentsFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRender(t *testing.T) {
	out, err := Render(AnalysisFile, "document-excerpt", map[string]string{
		"Title":   "Offer Analysis",
		"Type":    "offer_analysis",
		"Score":   "90",
		"Excerpt": "The offer of $450,000 is strong.",
	})
	require.NoError(t, err)
	assert.Equal(t, "### Offer Analysis (offer_analysis, quality 90)\nThe offer of $450,000 is strong.\n", out)

	_, err = Render(AnalysisFile, "missing", nil)
	assert.Error(t, err)
}

func TestRender_MissingData(t *testing.T) {
	_, err := Render(AnalysisFile, "document-excerpt", map[string]string{"Title": "Offer Analysis", "Score": ""})
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Type", "Excerpt"}, missing.Missing)
	assert.Contains(t, err.Error(), "no value for Type, Excerpt")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Hello Alice, welcome to Acme Realty!",
		Format("Hello {{.Name}}, welcome to {{.Company}}!", map[string]string{"Name": "Alice", "Company": "Acme Realty"}))

	// values are not re-expanded
	assert.Equal(t, "{{.B}} and 2",
		Format("{{.A}} and {{.B}}", map[string]string{"A": "{{.B}}", "B": "2"}))

	// placeholder remains when data is missing
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(AnalysisFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"document-excerpt", "insights-task", "summarize-package"}, keys)

	_, err = List("nonexistent.json")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Name", "Company"}, Placeholders("{{.Name}} at {{.Company}}, {{.Name}}"))
	assert.Empty(t, Placeholders("no placeholders"))
	assert.Empty(t, Placeholders("broken {{.Name"))
}
