package generators

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/prompts"
	"github.com/jonathan/docpack/internal/types"
)

const notProvided = "Not provided"

// Money formats an amount as whole dollars, e.g. "$450,000".
func Money(amount float64) string {
	return "$" + humanize.Comma(int64(math.Round(amount)))
}

// buildPrompt renders the prompt for docType from the embedded templates.
// The "system" prompt is sent separately as the model's system instruction.
func buildPrompt(docType types.DocumentType, in Input, priorLimit int) (string, error) {
	gc := in.Context
	if gc == nil {
		gc = &types.GenerationContext{}
	}
	opts := in.Options.WithDefaults()

	prior, err := describePrior(in, priorLimit)
	if err != nil {
		return "", err
	}
	sections, err := describeSections(opts)
	if err != nil {
		return "", err
	}

	body, err := prompts.Render(prompts.DocumentsFile, string(docType), map[string]string{
		"Tone":        opts.Tone,
		"Complexity":  opts.Complexity,
		"Format":      opts.Format,
		"Client":      describeClient(gc.Client),
		"Property":    describeProperty(gc.Property),
		"Agent":       describeAgent(gc.Agent),
		"Market":      describeMarket(gc.Market),
		"Offer":       describeOffer(gc.Offer),
		"Negotiation": describeNegotiation(gc.Negotiation),
		"Prior":       prior,
		"Sections":    sections,
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func describeClient(c types.Client) string {
	lines := []string{"Name: " + c.Name}
	if c.Type != "" {
		lines = append(lines, "Role: "+c.Type)
	}
	if c.Budget > 0 {
		lines = append(lines, "Budget: "+Money(c.Budget))
	}
	if c.Timeline != "" {
		lines = append(lines, "Timeline: "+c.Timeline)
	}
	if len(c.Preferences) > 0 {
		lines = append(lines, "Preferences: "+strings.Join(c.Preferences, ", "))
	}
	return strings.Join(lines, "\n")
}

func describeProperty(p types.Property) string {
	location := strings.TrimSpace(strings.Join(nonEmpty(p.City, p.State, p.Zip), ", "))
	lines := []string{"Address: " + p.Address}
	if location != "" {
		lines = append(lines, "Location: "+location)
	}
	lines = append(lines, "List price: "+Money(p.Price))
	if p.Bedrooms > 0 || p.Bathrooms > 0 {
		lines = append(lines, fmt.Sprintf("Bedrooms/Bathrooms: %d/%g", p.Bedrooms, p.Bathrooms))
	}
	if p.SquareFeet > 0 {
		lines = append(lines, fmt.Sprintf("Size: %s sq ft", humanize.Comma(int64(p.SquareFeet))))
	}
	if p.PropertyType != "" {
		lines = append(lines, "Type: "+p.PropertyType)
	}
	if p.YearBuilt > 0 {
		lines = append(lines, fmt.Sprintf("Year built: %d", p.YearBuilt))
	}
	if p.DaysOnMarket > 0 {
		lines = append(lines, fmt.Sprintf("Days on market: %d", p.DaysOnMarket))
	}
	if len(p.Features) > 0 {
		lines = append(lines, "Features: "+strings.Join(p.Features, ", "))
	}
	return strings.Join(lines, "\n")
}

func describeAgent(a types.Agent) string {
	lines := []string{"Name: " + a.Name}
	if a.Brokerage != "" {
		lines = append(lines, "Brokerage: "+a.Brokerage)
	}
	if a.YearsExperience > 0 {
		lines = append(lines, fmt.Sprintf("Experience: %d years", a.YearsExperience))
	}
	if len(a.Specialties) > 0 {
		lines = append(lines, "Specialties: "+strings.Join(a.Specialties, ", "))
	}
	return strings.Join(lines, "\n")
}

func describeMarket(m *types.MarketData) string {
	if m == nil {
		return notProvided
	}
	lines := []string{
		"Location: " + m.Location,
		"Median price: " + Money(m.MedianPrice),
	}
	if m.PricePerSqft > 0 {
		lines = append(lines, "Price per sq ft: "+Money(m.PricePerSqft))
	}
	if m.AverageDOM > 0 {
		lines = append(lines, fmt.Sprintf("Average days on market: %d", m.AverageDOM))
	}
	if m.InventoryLevel != "" {
		lines = append(lines, "Inventory: "+m.InventoryLevel)
	}
	if m.PriceTrend != "" {
		lines = append(lines, "Trend: "+m.PriceTrend)
	}
	if m.Synthesized {
		lines = append(lines, "Note: estimated from property data, not a market feed")
	}
	return strings.Join(lines, "\n")
}

func describeOffer(o *types.Offer) string {
	if o == nil {
		return notProvided
	}
	lines := []string{"Amount: " + Money(o.Amount)}
	if o.EarnestMoney > 0 {
		lines = append(lines, "Earnest money: "+Money(o.EarnestMoney))
	}
	if o.FinancingType != "" {
		lines = append(lines, "Financing: "+o.FinancingType)
	}
	if len(o.Contingencies) > 0 {
		lines = append(lines, "Contingencies: "+strings.Join(o.Contingencies, ", "))
	}
	if !o.ClosingDate.IsZero() {
		lines = append(lines, "Closing date: "+o.ClosingDate.Format("January 2, 2006"))
	}
	return strings.Join(lines, "\n")
}

func describeNegotiation(n *types.Negotiation) string {
	if n == nil {
		return notProvided
	}
	lines := []string{fmt.Sprintf("Round: %d", n.Round)}
	if len(n.CounterOffer) > 0 {
		amounts := make([]string, len(n.CounterOffer))
		for i, a := range n.CounterOffer {
			amounts[i] = Money(a)
		}
		lines = append(lines, "Counter offers: "+strings.Join(amounts, ", "))
	}
	if n.Notes != "" {
		lines = append(lines, "Notes: "+n.Notes)
	}
	return strings.Join(lines, "\n")
}

// describePrior renders earlier documents in AllDocumentTypes order so the
// prompt is stable for a given input.
func describePrior(in Input, limit int) (string, error) {
	if len(in.Prior) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, docType := range types.AllDocumentTypes() {
		doc, ok := in.PriorDocument(docType)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n%s\n\n", doc.Title, llm.Truncate(doc.Content, limit)))
	}
	return prompts.Render(prompts.DocumentsFile, "prior-documents", map[string]string{
		"Documents": strings.TrimSpace(sb.String()),
	})
}

func describeSections(opts types.GenerationOptions) (string, error) {
	var keys []string
	if opts.IncludeMarketAnalysis {
		keys = append(keys, "section-market")
	}
	if opts.IncludeRiskAssessment {
		keys = append(keys, "section-risk")
	}
	if opts.IncludeNegotiationTips {
		keys = append(keys, "section-negotiation")
	}
	if opts.IncludeNextSteps {
		keys = append(keys, "section-next-steps")
	}
	if len(keys) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		line, err := prompts.Get(prompts.DocumentsFile, key)
		if err != nil {
			return "", err
		}
		lines = append(lines, "- "+line)
	}
	return "Requirements:\n" + strings.Join(lines, "\n") + "\n\n", nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
