// Package prompts provides the embedded prompt templates used to generate
// package documents. Each JSON file maps a prompt key to a template string
// with {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt files
const (
	DocumentsFile = "documents.json"
	AnalysisFile  = "analysis.json"
)

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// NotFoundError is returned when a prompt file or key does not exist
type NotFoundError struct {
	File string
	Key  string
	// Cause is set when the file itself could not be read or parsed
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prompt file %s unavailable: %v", e.File, e.Cause)
	}
	return fmt.Sprintf("prompt key %q not found in %s", e.Key, e.File)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Get retrieves a prompt by filename and key.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", &NotFoundError{File: filename, Key: key}
	}
	return prompt, nil
}

// MissingDataError is returned by Render when data has no value for some
// of the template's placeholders.
type MissingDataError struct {
	File    string
	Key     string
	Missing []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("prompt %s/%s: no value for %s", e.File, e.Key, strings.Join(e.Missing, ", "))
}

// Render loads a prompt and fills its placeholders. Every placeholder must
// have a value in data, even an empty one.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingDataError{File: filename, Key: key, Missing: missing}
	}
	return Format(template, data), nil
}

// Format replaces {{.Key}} placeholders with values from data. Unknown
// placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	prompts, exists := cache[filename]
	cacheMu.RUnlock()
	if exists {
		return prompts, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, &NotFoundError{File: filename, Cause: err}
	}

	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, &NotFoundError{File: filename, Cause: err}
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// List returns the prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Placeholders returns the distinct {{.Key}} names in template, in order of
// first appearance.
func Placeholders(template string) []string {
	var keys []string
	seen := map[string]bool{}
	for rest := template; ; {
		start := strings.Index(rest, "{{.")
		if start < 0 {
			return keys
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return keys
		}
		if key := rest[:end]; !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		rest = rest[end+2:]
	}
}
