// Package pipeline provides the high-level orchestration for document
// package generation: validate and enrich the context, resolve the
// generation order, run every generator with per-document fallback, then
// analyze the finished set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/docpack/internal/analysis"
	"github.com/jonathan/docpack/internal/enrich"
	"github.com/jonathan/docpack/internal/generators"
	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/pipeline/steps"
	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/quality"
	"github.com/jonathan/docpack/internal/types"
)

// Config is the explicit configuration of an Orchestrator.
type Config struct {
	Table        steps.DependencyTable
	QualityRules quality.Rules
	Thresholds   analysis.Thresholds
}

// DefaultConfig returns the built-in table, rules and thresholds.
func DefaultConfig() Config {
	return Config{
		Table:        steps.DefaultTable(),
		QualityRules: quality.DefaultRules(),
		Thresholds:   analysis.DefaultThresholds(),
	}
}

// Request is one package generation request.
type Request struct {
	// PackageID is optional; a new id is assigned when it is zero.
	PackageID     uuid.UUID                `json:"package_id,omitempty"`
	DocumentTypes []types.DocumentType     `json:"document_types"`
	Context       *types.GenerationContext `json:"context"`
	Options       *types.GenerationOptions `json:"options,omitempty"`
}

// Orchestrator runs package generation requests. It holds no per-run
// state and may serve concurrent requests.
type Orchestrator struct {
	cfg      Config
	table    generators.Table
	analyzer *analysis.Analyzer
	enricher *enrich.Enricher
	logger   *logging.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records runs on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer sets the tracer used for run and document spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithEnricher sets the context enricher. Without one the context is
// cloned but otherwise used as given.
func WithEnricher(e *enrich.Enricher) Option {
	return func(o *Orchestrator) { o.enricher = e }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator dispatching to gens. Zero-valued parts of cfg
// take their defaults. A nil analyzer always produces default insights.
func New(cfg Config, gens generators.Generators, analyzer *analysis.Analyzer, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.Table == nil {
		cfg.Table = def.Table
	}
	if cfg.QualityRules.MinWords == 0 && cfg.QualityRules.MaxWords == 0 {
		cfg.QualityRules = def.QualityRules
	}
	if cfg.Thresholds.MaxRecommendations == 0 {
		cfg.Thresholds = def.Thresholds
	}

	table := generators.Table{}
	if gens != nil {
		table = generators.NewTable(gens)
	}

	o := &Orchestrator{
		cfg:      cfg,
		table:    table,
		analyzer: analyzer,
		logger:   logging.NewNop(),
		tracer:   observability.Tracer(),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.analyzer == nil {
		o.analyzer = analysis.NewAnalyzer(nil, o.logger)
	}
	return o
}

// Generate runs one request to completion. It never returns nil and never
// panics: failures before generation starts produce a failed result, and
// per-document failures produce fallback documents.
func (o *Orchestrator) Generate(ctx context.Context, req Request, sink progress.Sink) (result *types.PackageResult) {
	started := o.now()
	packageID := req.PackageID
	if packageID == uuid.Nil {
		packageID = o.newID()
	}
	logger := o.logger.With("package_id", packageID.String())

	reporter := progress.NewReporter(progress.Multi{o.progressCounter(), sink}, logger)
	defer o.metrics.RunStarted()()

	ctx, span := o.tracer.Start(ctx, "generate package", trace.WithAttributes(
		attribute.String("docpack.package_id", packageID.String()),
		attribute.Int("docpack.requested", len(req.DocumentTypes)),
	))
	defer span.End()

	result = &types.PackageResult{
		Documents:       []types.GeneratedDocument{},
		Recommendations: []string{},
		Metadata: types.PackageMetadata{
			PackageID:      packageID,
			StartedAt:      started.UTC(),
			RequestedCount: len(req.DocumentTypes),
		},
	}

	fail := func(err error) *types.PackageResult {
		result.Status = types.PackageStatusFailed
		result.Documents = []types.GeneratedDocument{}
		result.Errors = []string{err.Error()}
		o.finish(result)
		span.RecordError(err)
		span.SetStatus(codes.Error, "package failed")
		reporter.Error(err.Error())
		o.metrics.ObservePackage(result.Status, time.Duration(result.Metadata.DurationMs)*time.Millisecond)
		logger.Error("package generation failed", "error", err)
		return result
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = fail(fmt.Errorf("package generation panicked: %v", rec))
		}
	}()

	logger.Info("package generation started", "requested", len(req.DocumentTypes))
	reporter.Emit(progress.StatusInitializing, "Starting package generation", progress.PercentStart, "")

	opts, err := validate(req)
	if err != nil {
		return fail(err)
	}
	reporter.Emit(progress.StatusInitializing, "Context validated", progress.PercentValidated, "")

	gc := req.Context.Clone()
	if o.enricher != nil {
		gc = o.enricher.Enrich(ctx, req.Context)
	}
	reporter.Emit(progress.StatusInitializing, "Context enriched", progress.PercentEnriched, "")

	order, err := o.Resolve(req.DocumentTypes)
	if err != nil {
		return fail(fmt.Errorf("resolving generation order: %w", err))
	}
	result.Metadata.Order = order
	reporter.Emit(progress.StatusInitializing, fmt.Sprintf("Resolved generation order for %d documents", len(order)), progress.PercentResolved, "")

	exec := (&executor{
		table:    o.table,
		rules:    o.cfg.QualityRules,
		reporter: reporter,
		logger:   logger,
		metrics:  o.metrics,
		tracer:   o.tracer,
		now:      o.now,
		newID:    o.newID,
	}).run(ctx, order, gc, opts)

	result.Documents = exec.documents
	result.Metadata.GeneratedCount = len(exec.documents)
	result.Metadata.FallbackCount = exec.fallbacks
	result.Metadata.DocumentDurationsMs = exec.durations

	reporter.Emit(progress.StatusAnalyzing, "Analyzing package", progress.PercentGenerated, "")
	insights, report := o.analyzer.AnalyzeWithReport(ctx, exec.documents, gc)
	if report.Degraded() {
		o.metrics.ObserveAnalysisDegraded()
	}
	result.Insights = insights
	result.Recommendations = analysis.BuildRecommendations(exec.documents, insights, o.cfg.Thresholds)
	reporter.Emit(progress.StatusAnalyzing, "Analysis complete", progress.PercentAnalyzed, "")

	result.Status = types.PackageStatusSuccess
	if result.Metadata.GeneratedCount != result.Metadata.RequestedCount {
		result.Status = types.PackageStatusPartial
	}
	o.finish(result)

	span.SetAttributes(
		attribute.String("docpack.status", result.Status),
		attribute.Int("docpack.fallbacks", exec.fallbacks),
	)
	reporter.Emit(progress.StatusCompleted, "Package complete", progress.PercentComplete, "")
	o.metrics.ObservePackage(result.Status, time.Duration(result.Metadata.DurationMs)*time.Millisecond)

	logger.Info("package generation finished",
		"status", result.Status,
		"documents", result.Metadata.GeneratedCount,
		"fallbacks", result.Metadata.FallbackCount,
		"duration_ms", result.Metadata.DurationMs)
	return result
}

// Resolve returns the generation order for requested using the
// orchestrator's dependency table.
func (o *Orchestrator) Resolve(requested []types.DocumentType) ([]types.DocumentType, error) {
	return steps.Resolve(requested, o.cfg.Table)
}

// Table returns a copy of the dependency table in use.
func (o *Orchestrator) Table() steps.DependencyTable {
	return o.cfg.Table.Clone()
}

func (o *Orchestrator) finish(result *types.PackageResult) {
	completed := o.now()
	result.Metadata.CompletedAt = completed.UTC()
	result.Metadata.DurationMs = completed.Sub(result.Metadata.StartedAt).Milliseconds()
}

func (o *Orchestrator) progressCounter() progress.Sink {
	if o.metrics == nil {
		return nil
	}
	return progress.SinkFunc(func(s progress.Snapshot) {
		o.metrics.ObserveProgress(string(s.Status))
	})
}

// validate checks the request context and returns the effective options.
func validate(req Request) (types.GenerationOptions, error) {
	if req.Context == nil {
		return types.GenerationOptions{}, errors.New("generation context is required")
	}
	if err := req.Context.Validate(); err != nil {
		return types.GenerationOptions{}, fmt.Errorf("invalid generation context: %w", err)
	}

	opts := types.DefaultGenerationOptions()
	if req.Options != nil {
		opts = req.Options.WithDefaults()
	}
	if err := opts.Validate(); err != nil {
		return types.GenerationOptions{}, fmt.Errorf("invalid generation options: %w", err)
	}
	return opts, nil
}
