package pipeline

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/docpack/internal/fallback"
	"github.com/jonathan/docpack/internal/generators"
	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/quality"
	"github.com/jonathan/docpack/internal/types"
)

// executor drives one resolved order. It owns the by-type map of finished
// documents for the duration of a run.
type executor struct {
	table    generators.Table
	rules    quality.Rules
	reporter *progress.Reporter
	logger   *logging.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() uuid.UUID
}

// execution is what the executor hands back to the orchestrator.
type execution struct {
	documents []types.GeneratedDocument
	durations map[types.DocumentType]int64
	fallbacks int
}

// run generates every type in order. It always returns one document per
// type, in order; a failing or panicking generator yields a fallback.
func (e *executor) run(ctx context.Context, order []types.DocumentType, gc *types.GenerationContext, opts types.GenerationOptions) execution {
	n := len(order)
	e.reporter.SetTotal(n)

	out := execution{
		documents: make([]types.GeneratedDocument, 0, n),
		durations: make(map[types.DocumentType]int64, n),
	}
	prior := make(map[types.DocumentType]types.GeneratedDocument, n)

	for i, docType := range order {
		name := docType.DisplayName()
		e.reporter.Emit(progress.StatusGenerating, "Generating "+name, progress.GeneratingPercent(i, n), docType)

		in := generators.Input{Context: gc, Options: opts, Prior: copyPrior(prior)}
		start := e.now()
		doc, err := e.generateOne(ctx, docType, in)
		elapsed := e.now().Sub(start)

		doc.ID = e.newID()
		doc.Metadata.GeneratedAt = e.now().UTC()
		doc.Metadata.DurationMs = elapsed.Milliseconds()

		e.reporter.DocumentDone(elapsed)
		e.metrics.ObserveDocument(docType, err != nil, elapsed)
		out.durations[docType] = elapsed.Milliseconds()

		if err != nil {
			out.fallbacks++
			e.logger.Warn("document generation failed, using fallback",
				"document_type", string(docType),
				"duration_ms", elapsed.Milliseconds(),
				"error", err)
			e.reporter.Emit(progress.StatusGenerating, "Fallback created for "+name, progress.GeneratingPercent(i+1, n), docType)
		} else {
			e.logger.Debug("document generated",
				"document_type", string(docType),
				"words", doc.Metadata.WordCount,
				"quality", doc.Quality.Score,
				"duration_ms", elapsed.Milliseconds())
			e.reporter.Emit(progress.StatusGenerating, "Completed "+name, progress.GeneratingPercent(i+1, n), docType)
		}

		prior[docType] = doc.Clone()
		out.documents = append(out.documents, doc)
	}

	return out
}

// generateOne returns either a fully built document or, with a non-nil
// error, the fallback for docType.
func (e *executor) generateOne(ctx context.Context, docType types.DocumentType, in generators.Input) (doc types.GeneratedDocument, err error) {
	ctx, span := e.tracer.Start(ctx, "generate "+string(docType),
		trace.WithAttributes(attribute.String("docpack.document_type", string(docType))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fallback")
		}
		span.SetAttributes(attribute.Bool("docpack.fallback", err != nil))
		span.End()
	}()

	content, err := e.invoke(ctx, docType, in)
	if err == nil && content == nil {
		err = &generators.GenerationError{Type: docType, Message: "generator returned no content"}
	}
	if err != nil {
		return fallback.Generate(docType, err), err
	}
	return e.build(docType, content, in.Options), nil
}

// invoke calls the registry, turning a panic into an error.
func (e *executor) invoke(ctx context.Context, docType types.DocumentType, in generators.Input) (content *generators.Content, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			content = nil
			err = &generators.GenerationError{Type: docType, Message: fmt.Sprintf("generator panicked: %v", rec)}
		}
	}()
	return e.table.Generate(ctx, docType, in)
}

func (e *executor) build(docType types.DocumentType, content *generators.Content, opts types.GenerationOptions) types.GeneratedDocument {
	words := types.CountWords(content.Body)
	title := content.Title
	if title == "" {
		title = docType.DisplayName()
	}

	return types.GeneratedDocument{
		Type:    docType,
		Title:   title,
		Content: content.Body,
		Metadata: types.DocumentMetadata{
			WordCount:          words,
			ReadingTimeMinutes: types.ReadingTimeMinutes(words),
			Tone:               opts.Tone,
			Complexity:         opts.Complexity,
			Version:            types.VersionStandard,
			Extra:              maps.Clone(content.Metadata),
		},
		Quality: e.rules.Assess(content.Body, docType),
	}
}

func copyPrior(prior map[types.DocumentType]types.GeneratedDocument) map[types.DocumentType]types.GeneratedDocument {
	out := make(map[types.DocumentType]types.GeneratedDocument, len(prior))
	for k, v := range prior {
		out[k] = v.Clone()
	}
	return out
}
