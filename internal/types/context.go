package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Client describes the buyer or seller the package is prepared for.
type Client struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name" validate:"required,min=1"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone       string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=buyer seller"`
	Budget      float64  `json:"budget,omitempty" yaml:"budget,omitempty" validate:"gte=0"`
	Timeline    string   `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Preferences []string `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

// Property describes the listing under discussion.
type Property struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Address      string   `json:"address" yaml:"address" validate:"required,min=1"`
	City         string   `json:"city,omitempty" yaml:"city,omitempty"`
	State        string   `json:"state,omitempty" yaml:"state,omitempty"`
	Zip          string   `json:"zip,omitempty" yaml:"zip,omitempty"`
	Price        float64  `json:"price" yaml:"price" validate:"gte=0"`
	Bedrooms     int      `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms    float64  `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty" validate:"gte=0"`
	SquareFeet   int      `json:"square_feet,omitempty" yaml:"square_feet,omitempty" validate:"gte=0"`
	PropertyType string   `json:"property_type,omitempty" yaml:"property_type,omitempty"`
	YearBuilt    int      `json:"year_built,omitempty" yaml:"year_built,omitempty"`
	DaysOnMarket int      `json:"days_on_market,omitempty" yaml:"days_on_market,omitempty" validate:"gte=0"`
	Features     []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Location returns a cache-friendly location key for the property.
func (p Property) Location() string {
	switch {
	case p.Zip != "":
		return p.Zip
	case p.City != "" && p.State != "":
		return p.City + ", " + p.State
	case p.City != "":
		return p.City
	default:
		return p.Address
	}
}

// Agent describes the representing agent.
type Agent struct {
	ID              string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string   `json:"name" yaml:"name" validate:"required,min=1"`
	Email           string   `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone           string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Brokerage       string   `json:"brokerage,omitempty" yaml:"brokerage,omitempty"`
	License         string   `json:"license,omitempty" yaml:"license,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty" yaml:"years_experience,omitempty" validate:"gte=0"`
	Specialties     []string `json:"specialties,omitempty" yaml:"specialties,omitempty"`
}

// MarketData summarizes local market conditions.
type MarketData struct {
	Location         string  `json:"location" yaml:"location"`
	MedianPrice      float64 `json:"median_price" yaml:"median_price" validate:"gte=0"`
	PricePerSqft     float64 `json:"price_per_sqft,omitempty" yaml:"price_per_sqft,omitempty" validate:"gte=0"`
	AverageDOM       int     `json:"average_days_on_market,omitempty" yaml:"average_days_on_market,omitempty" validate:"gte=0"`
	InventoryLevel   string  `json:"inventory_level,omitempty" yaml:"inventory_level,omitempty"`
	PriceTrend       string  `json:"price_trend,omitempty" yaml:"price_trend,omitempty"`
	ComparableCount  int     `json:"comparable_count,omitempty" yaml:"comparable_count,omitempty" validate:"gte=0"`
	Synthesized      bool    `json:"synthesized,omitempty" yaml:"synthesized,omitempty"`
	SynthesizedNotes string  `json:"synthesized_notes,omitempty" yaml:"synthesized_notes,omitempty"`
}

// Offer describes a purchase offer.
type Offer struct {
	Amount        float64   `json:"amount" yaml:"amount" validate:"gte=0"`
	EarnestMoney  float64   `json:"earnest_money,omitempty" yaml:"earnest_money,omitempty" validate:"gte=0"`
	FinancingType string    `json:"financing_type,omitempty" yaml:"financing_type,omitempty"`
	Contingencies []string  `json:"contingencies,omitempty" yaml:"contingencies,omitempty"`
	ClosingDate   time.Time `json:"closing_date,omitempty" yaml:"closing_date,omitempty"`
}

// Negotiation describes an in-flight negotiation.
type Negotiation struct {
	Round        int       `json:"round" yaml:"round" validate:"gte=0"`
	CounterOffer []float64 `json:"counter_offers,omitempty" yaml:"counter_offers,omitempty"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// GenerationContext is the read-only input shared by every generator in a run.
type GenerationContext struct {
	Client      Client       `json:"client" yaml:"client"`
	Property    Property     `json:"property" yaml:"property"`
	Agent       Agent        `json:"agent" yaml:"agent"`
	Market      *MarketData  `json:"market,omitempty" yaml:"market,omitempty"`
	Offer       *Offer       `json:"offer,omitempty" yaml:"offer,omitempty"`
	Negotiation *Negotiation `json:"negotiation,omitempty" yaml:"negotiation,omitempty"`
}

// Validate validates the GenerationContext using the validator.
func (c *GenerationContext) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Clone returns a deep copy so enrichment never touches the caller's value.
func (c *GenerationContext) Clone() *GenerationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Client.Preferences = cloneStrings(c.Client.Preferences)
	out.Property.Features = cloneStrings(c.Property.Features)
	out.Agent.Specialties = cloneStrings(c.Agent.Specialties)
	if c.Market != nil {
		m := *c.Market
		out.Market = &m
	}
	if c.Offer != nil {
		o := *c.Offer
		o.Contingencies = cloneStrings(c.Offer.Contingencies)
		out.Offer = &o
	}
	if c.Negotiation != nil {
		n := *c.Negotiation
		if c.Negotiation.CounterOffer != nil {
			n.CounterOffer = append([]float64(nil), c.Negotiation.CounterOffer...)
		}
		out.Negotiation = &n
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
	FormatHTML     = "html"
)

// Tones
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
	TonePersuasive   = "persuasive"
)

// Complexity levels
const (
	ComplexitySimple   = "simple"
	ComplexityStandard = "standard"
	ComplexityDetailed = "detailed"
)

// GenerationOptions controls the shape of every document in a run.
type GenerationOptions struct {
	Format                 string `json:"format" yaml:"format" validate:"oneof=markdown plain html"`
	Tone                   string `json:"tone" yaml:"tone" validate:"oneof=professional friendly formal persuasive"`
	Complexity             string `json:"complexity" yaml:"complexity" validate:"oneof=simple standard detailed"`
	IncludeMarketAnalysis  bool   `json:"include_market_analysis" yaml:"include_market_analysis"`
	IncludeRiskAssessment  bool   `json:"include_risk_assessment" yaml:"include_risk_assessment"`
	IncludeNegotiationTips bool   `json:"include_negotiation_tips" yaml:"include_negotiation_tips"`
	IncludeNextSteps       bool   `json:"include_next_steps" yaml:"include_next_steps"`
}

// DefaultGenerationOptions returns the options used when the caller sets none.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Format:                 FormatMarkdown,
		Tone:                   ToneProfessional,
		Complexity:             ComplexityStandard,
		IncludeMarketAnalysis:  true,
		IncludeRiskAssessment:  true,
		IncludeNegotiationTips: true,
		IncludeNextSteps:       true,
	}
}

// WithDefaults fills empty enum fields from DefaultGenerationOptions.
func (o GenerationOptions) WithDefaults() GenerationOptions {
	d := DefaultGenerationOptions()
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Tone == "" {
		o.Tone = d.Tone
	}
	if o.Complexity == "" {
		o.Complexity = d.Complexity
	}
	return o
}

// Validate validates the GenerationOptions using the validator.
func (o *GenerationOptions) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}
