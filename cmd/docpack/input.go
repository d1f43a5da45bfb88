package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/docpack/internal/types"
)

// requestFile is the on-disk form of a generation request.
type requestFile struct {
	DocumentTypes []string                 `json:"document_types" yaml:"document_types"`
	Context       *types.GenerationContext `json:"context" yaml:"context"`
	Options       *types.GenerationOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// loadRequestFile reads a JSON or YAML request. The format follows the
// extension; anything other than .yaml/.yml is read as JSON.
func loadRequestFile(path string) (*requestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var req requestFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	if req.Context == nil {
		return nil, fmt.Errorf("request file %s has no context", path)
	}
	return &req, nil
}

// parseTypeList splits comma separated document types. Surrounding space is
// trimmed and empty entries are dropped.
func parseTypeList(values []string) ([]types.DocumentType, error) {
	var raw []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	}
	return types.ParseDocumentTypes(raw)
}
