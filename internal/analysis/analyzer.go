package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/schemas"
	"github.com/jonathan/docpack/internal/types"
)

// Insight field names as they appear in collaborator output.
const (
	FieldKeyThemes          = "keyThemes"
	FieldConsistencyScore   = "consistencyScore"
	FieldRecommendedActions = "recommendedActions"
	FieldMarketAlignment    = "marketAlignment"
	FieldStrategicPosition  = "strategicPosition"
	FieldRiskFactors        = "riskFactors"
)

var insightFields = []string{
	FieldKeyThemes,
	FieldConsistencyScore,
	FieldRecommendedActions,
	FieldMarketAlignment,
	FieldStrategicPosition,
	FieldRiskFactors,
}

// Summarizer is the analysis collaborator. It returns an Insights-shaped
// JSON object; its fields are checked before use.
type Summarizer interface {
	Summarize(ctx context.Context, docs []types.GeneratedDocument, gc *types.GenerationContext) (json.RawMessage, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, docs []types.GeneratedDocument, gc *types.GenerationContext) (json.RawMessage, error)

// Summarize calls f.
func (f SummarizerFunc) Summarize(ctx context.Context, docs []types.GeneratedDocument, gc *types.GenerationContext) (json.RawMessage, error) {
	return f(ctx, docs, gc)
}

// Report describes how an Insights value was assembled.
type Report struct {
	// Defaulted lists the fields that fell back to their default value.
	Defaulted []string
	// Err is the collaborator or parse error when every field was defaulted.
	Err error
}

// Degraded reports whether any default was used.
func (r Report) Degraded() bool {
	return len(r.Defaulted) > 0
}

// Analyzer produces package insights through a Summarizer.
type Analyzer struct {
	summarizer Summarizer
	logger     *logging.Logger
}

// NewAnalyzer creates an Analyzer. A nil summarizer always yields defaults.
func NewAnalyzer(summarizer Summarizer, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{summarizer: summarizer, logger: logger}
}

// AnalyzeWithReport returns insights for docs together with a report of
// which fields were replaced by defaults. It never fails.
func (a *Analyzer) AnalyzeWithReport(ctx context.Context, docs []types.GeneratedDocument, gc *types.GenerationContext) (insights types.Insights, report Report) {
	defer func() {
		if rec := recover(); rec != nil {
			insights = DefaultInsights()
			report = Report{Defaulted: append([]string(nil), insightFields...), Err: fmt.Errorf("analysis panicked: %v", rec)}
			a.logger.Error("package analysis panicked", "panic", rec)
		}
	}()

	if a.summarizer == nil {
		return DefaultInsights(), Report{
			Defaulted: append([]string(nil), insightFields...),
			Err:       &SummarizeError{Message: "no summarizer configured"},
		}
	}

	raw, err := a.summarizer.Summarize(ctx, docs, gc)
	if err != nil {
		a.logger.Warn("package analysis failed, using default insights", "error", err)
		return DefaultInsights(), Report{Defaulted: append([]string(nil), insightFields...), Err: err}
	}

	insights, report = ParseInsights(raw)
	if report.Degraded() {
		a.logger.Warn("package analysis returned unusable fields", "fields", report.Defaulted, "error", report.Err)
	}
	return insights, report
}

// ParseInsights validates raw field by field against the insights schema.
// Missing or invalid fields take their default value; the consistency
// score is clamped to [0, 100].
func ParseInsights(raw json.RawMessage) (types.Insights, Report) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		if err == nil {
			err = errors.New("null insights")
		}
		return DefaultInsights(), Report{
			Defaulted: append([]string(nil), insightFields...),
			Err:       &ParseError{Message: "insights are not a JSON object", Cause: err},
		}
	}

	invalid := map[string]bool{}
	if err := schemas.ValidateBytes(schemas.Insights, raw); err != nil {
		var ve *schemas.ValidationError
		if !errors.As(err, &ve) {
			return DefaultInsights(), Report{
				Defaulted: append([]string(nil), insightFields...),
				Err:       err,
			}
		}
		for _, fe := range ve.Errors {
			invalid[fe.TopLevel()] = true
		}
	}

	out := DefaultInsights()
	var report Report
	usable := func(name string) (json.RawMessage, bool) {
		value, ok := fields[name]
		if !ok || invalid[name] || string(value) == "null" {
			report.Defaulted = append(report.Defaulted, name)
			return nil, false
		}
		return value, true
	}

	// a value that passes the schema can still fail to decode, e.g. a
	// number outside float64 range
	failed := func(name string) {
		report.Defaulted = append(report.Defaulted, name)
	}

	if v, ok := usable(FieldKeyThemes); ok && !decodeInto(v, &out.KeyThemes) {
		failed(FieldKeyThemes)
	}
	if v, ok := usable(FieldConsistencyScore); ok {
		if !decodeInto(v, &out.ConsistencyScore) {
			failed(FieldConsistencyScore)
		}
		out.ConsistencyScore = clampScore(out.ConsistencyScore)
	}
	if v, ok := usable(FieldRecommendedActions); ok && !decodeInto(v, &out.RecommendedActions) {
		failed(FieldRecommendedActions)
	}
	if v, ok := usable(FieldMarketAlignment); ok && !decodeInto(v, &out.MarketAlignment) {
		failed(FieldMarketAlignment)
	}
	if v, ok := usable(FieldStrategicPosition); ok && !decodeInto(v, &out.StrategicPosition) {
		failed(FieldStrategicPosition)
	}
	if v, ok := usable(FieldRiskFactors); ok && !decodeInto(v, &out.RiskFactors) {
		failed(FieldRiskFactors)
	}

	sort.Strings(report.Defaulted)
	return out, report
}

// decodeInto overwrites dst only when v decodes cleanly and reports
// whether it did.
func decodeInto[T any](v json.RawMessage, dst *T) bool {
	var tmp T
	if json.Unmarshal(v, &tmp) != nil {
		return false
	}
	*dst = tmp
	return true
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
