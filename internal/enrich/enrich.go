// Package enrich prepares a GenerationContext for a run. It never modifies
// the caller's context: Enrich works on a clone.
package enrich

import (
	"context"
	"errors"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/types"
)

// DefaultCacheSize is the number of locations kept in the market cache.
const DefaultCacheSize = 256

// Synthesized market defaults
const (
	defaultAverageDOM = 30
	defaultTrend      = "stable"
	defaultInventory  = "unknown"
	synthesizedNote   = "Estimated from the subject property; no market data was supplied"
)

// ErrNotFound is returned by a MarketSource with no data for a location.
var ErrNotFound = errors.New("market data not found")

// MarketSource looks up market data for a location.
type MarketSource interface {
	Lookup(ctx context.Context, location string) (*types.MarketData, error)
}

// Enricher fills gaps in a GenerationContext before generation.
type Enricher struct {
	source MarketSource
	cache  *lru.Cache[string, types.MarketData]
	logger *logging.Logger
}

// New creates an Enricher. source may be nil, in which case missing market
// data is always synthesized from the property.
func New(source MarketSource, cacheSize int, logger *logging.Logger) (*Enricher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, types.MarketData](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{source: source, cache: cache, logger: logger}, nil
}

// Enrich returns a copy of gc with market data filled in when it is absent.
// Enrich is safe for concurrent use.
func (e *Enricher) Enrich(ctx context.Context, gc *types.GenerationContext) *types.GenerationContext {
	out := gc.Clone()
	if out == nil {
		return nil
	}

	if out.Market != nil {
		if out.Market.Location == "" {
			out.Market.Location = out.Property.Location()
		}
		return out
	}

	location := out.Property.Location()
	if m, ok := e.lookup(ctx, location); ok {
		out.Market = &m
		return out
	}

	out.Market = Synthesize(out.Property)
	return out
}

func (e *Enricher) lookup(ctx context.Context, location string) (types.MarketData, bool) {
	if e.source == nil || location == "" {
		return types.MarketData{}, false
	}
	if m, ok := e.cache.Get(location); ok {
		return m, true
	}

	found, err := e.source.Lookup(ctx, location)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.Warn("market lookup failed, synthesizing", "location", location, "error", err)
		}
		return types.MarketData{}, false
	}
	if found == nil {
		return types.MarketData{}, false
	}

	m := *found
	if m.Location == "" {
		m.Location = location
	}
	e.cache.Add(location, m)
	return m, true
}

// CacheLen returns the number of cached locations.
func (e *Enricher) CacheLen() int {
	return e.cache.Len()
}

// Synthesize derives market data from the property alone.
func Synthesize(p types.Property) *types.MarketData {
	m := &types.MarketData{
		Location:         p.Location(),
		MedianPrice:      p.Price,
		AverageDOM:       defaultAverageDOM,
		InventoryLevel:   defaultInventory,
		PriceTrend:       defaultTrend,
		Synthesized:      true,
		SynthesizedNotes: synthesizedNote,
	}
	if p.SquareFeet > 0 {
		m.PricePerSqft = math.Round(p.Price/float64(p.SquareFeet)*100) / 100
	}
	if p.DaysOnMarket > 0 {
		m.AverageDOM = p.DaysOnMarket
	}
	return m
}
