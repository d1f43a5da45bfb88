package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"keyThemes\": [\"pricing\"]}\n```",
			expected: `{"keyThemes": ["pricing"]}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"consistencyScore\": 80}\n```",
			expected: `{"consistencyScore": 80}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is the analysis:\n{\"marketAlignment\": \"strong\"}",
			expected: `{"marketAlignment": "strong"}`,
		},
		{
			name:     "trailing commentary",
			input:    "{\"riskFactors\": []}\n\nLet me know if you need more.",
			expected: `{"riskFactors": []}`,
		},
		{
			name:     "array with preamble",
			input:    "Items:\n[\"a\", \"b\"]",
			expected: `["a", "b"]`,
		},
		{
			name:     "braces inside strings",
			input:    `Result: {"template": "Dear {name}", "x": "}"}`,
			expected: `{"template": "Dear {name}", "x": "}"}`,
		},
		{
			name:     "escaped quotes",
			input:    `{"note": "He said \"sell\""}`,
			expected: `{"note": "He said \"sell\""}`,
		},
		{
			name:     "no json",
			input:    "  nothing structured here  ",
			expected: "nothing structured here",
		},
		{
			name:     "unbalanced json returned as-is",
			input:    `{"open": true`,
			expected: `{"open": true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject(`{"a": {"b": 1}} tail`))
	assert.Equal(t, `[[1], [2]]`, extractJSONArray(`[[1], [2]] tail`))
	assert.Equal(t, "", extractJSONObject("not json"))
	assert.Equal(t, "", extractJSONArray(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "héé...", Truncate("hééllo", 3))
}
