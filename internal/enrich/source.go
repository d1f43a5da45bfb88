package enrich

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/docpack/internal/types"
)

// StaticSource serves market data from a fixed table keyed by location.
// Keys are matched case-insensitively.
type StaticSource struct {
	markets map[string]types.MarketData
}

// NewStaticSource builds a source from market entries. Entries without a
// location are skipped.
func NewStaticSource(entries []types.MarketData) *StaticSource {
	s := &StaticSource{markets: make(map[string]types.MarketData, len(entries))}
	for _, m := range entries {
		if m.Location == "" {
			continue
		}
		s.markets[normalize(m.Location)] = m
	}
	return s
}

// Lookup implements MarketSource.
func (s *StaticSource) Lookup(_ context.Context, location string) (*types.MarketData, error) {
	m, ok := s.markets[normalize(location)]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

// Len returns the number of locations.
func (s *StaticSource) Len() int {
	return len(s.markets)
}

type marketFile struct {
	Markets []types.MarketData `yaml:"markets"`
}

// LoadStaticSource reads a YAML (or JSON, which is valid YAML) file of the form
//
//	markets:
//	  - location: "78701"
//	    median_price: 525000
func LoadStaticSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market file: %w", err)
	}

	var f marketFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse market file %s: %w", path, err)
	}
	return NewStaticSource(f.Markets), nil
}

func normalize(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
