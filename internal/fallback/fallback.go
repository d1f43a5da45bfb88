// Package fallback produces deterministic placeholder documents used when a
// content generator fails. Nothing in this package performs I/O.
package fallback

import (
	"fmt"

	"github.com/jonathan/docpack/internal/types"
)

// Score is the fixed quality score assigned to every fallback document.
const Score = 60

// IssueFallbackUsed is the first issue recorded on every fallback document.
const IssueFallbackUsed = "Generated using fallback system"

var suggestions = []string{
	"Regenerate this document once the content service is available",
	"Review and personalize the placeholder content before sharing with the client",
}

// Generate returns a fallback document for docType. The returned document has
// a zero ID and GeneratedAt; the caller stamps both. cause may be nil.
func Generate(docType types.DocumentType, cause error) types.GeneratedDocument {
	tmpl, ok := templates[docType]
	if !ok {
		tmpl = genericTemplate(docType)
	}

	issues := []string{IssueFallbackUsed}
	if cause != nil {
		issues = append(issues, fmt.Sprintf("Generation error: %s", cause.Error()))
	} else {
		issues = append(issues, "Generation error: unknown")
	}

	words := types.CountWords(tmpl.body)
	return types.GeneratedDocument{
		Type:    docType,
		Title:   tmpl.title,
		Content: tmpl.body,
		Metadata: types.DocumentMetadata{
			WordCount:          words,
			ReadingTimeMinutes: types.ReadingTimeMinutes(words),
			Version:            types.VersionFallback,
		},
		Quality: types.QualityAssessment{
			Score:       Score,
			Issues:      issues,
			Suggestions: append([]string(nil), suggestions...),
		},
	}
}
