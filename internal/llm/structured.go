package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StructuredPrompt asks the model for one JSON object shaped by a JSON
// Schema document. The schema is rendered as a field outline rather than
// sent verbatim.
type StructuredPrompt struct {
	Task   string
	Schema string
	Rules  []string
}

// Render builds the prompt for input. It fails only when Schema is not a
// JSON Schema object with properties.
func (p StructuredPrompt) Render(input string) (string, error) {
	outline, err := SchemaOutline(p.Schema)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(p.Task))
	sb.WriteString("\n\nReturn ONLY a JSON object with these fields:\n")
	sb.WriteString(outline)
	sb.WriteString("\nRules:\n")
	for _, rule := range p.Rules {
		sb.WriteString("- " + rule + "\n")
	}
	sb.WriteString("- No markdown, no code fences, no text outside the JSON object.\n\n")
	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(input)
	sb.WriteString("\n\"\"\"\n")
	return sb.String(), nil
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Items       *struct {
		Type string `json:"type"`
	} `json:"items"`
}

// SchemaOutline renders the top-level properties of a JSON Schema as one
// line per field, sorted by name:
//
//	"riskFactors": ["string"]  // risks raised by the documents
func SchemaOutline(schemaJSON string) (string, error) {
	var doc struct {
		Properties map[string]schemaProperty `json:"properties"`
	}
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return "", fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(doc.Properties) == 0 {
		return "", fmt.Errorf("schema has no properties")
	}

	names := make([]string, 0, len(doc.Properties))
	for name := range doc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		prop := doc.Properties[name]
		line := fmt.Sprintf("  %q: %s", name, typeHint(prop))
		if prop.Description != "" {
			line += "  // " + prop.Description
		}
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}

func typeHint(p schemaProperty) string {
	switch p.Type {
	case "array":
		item := "string"
		if p.Items != nil && p.Items.Type != "" {
			item = p.Items.Type
		}
		return fmt.Sprintf("[%q]", item)
	case "string", "":
		return `"string"`
	default:
		return p.Type
	}
}
