package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/docpack/internal/types"
)

// ErrPackageNotFound is returned when a package id has no row.
var ErrPackageNotFound = errors.New("package not found")

// DefaultListLimit is used when ListPackages is called with limit <= 0.
const DefaultListLimit = 50

// PackageSummary is one row of a package listing.
type PackageSummary struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       string     `json:"client_id"`
	Status         string     `json:"status"`
	RequestedCount int        `json:"requested_count"`
	GeneratedCount int        `json:"generated_count"`
	FallbackCount  int        `json:"fallback_count"`
	DurationMs     int64      `json:"duration_ms"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// packageRow is the column form of a PackageResult.
type packageRow struct {
	ID              uuid.UUID
	ClientID        string
	Status          string
	RequestedCount  int
	GeneratedCount  int
	FallbackCount   int
	DurationMs      int64
	Order           []byte
	Insights        []byte
	Recommendations []byte
	Errors          []byte
	StartedAt       time.Time
	CompletedAt     time.Time
}

// documentRow is the column form of a GeneratedDocument.
type documentRow struct {
	ID           uuid.UUID
	PackageID    uuid.UUID
	Position     int
	DocumentType string
	Title        string
	Content      string
	QualityScore int
	IsFallback   bool
	Metadata     []byte
	Quality      []byte
}

func encodePackage(clientID string, r *types.PackageResult) (packageRow, error) {
	row := packageRow{
		ID:             r.Metadata.PackageID,
		ClientID:       clientID,
		Status:         r.Status,
		RequestedCount: r.Metadata.RequestedCount,
		GeneratedCount: r.Metadata.GeneratedCount,
		FallbackCount:  r.Metadata.FallbackCount,
		DurationMs:     r.Metadata.DurationMs,
		StartedAt:      r.Metadata.StartedAt,
		CompletedAt:    r.Metadata.CompletedAt,
	}

	order := r.Metadata.Order
	if order == nil {
		order = []types.DocumentType{}
	}
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}

	var err error
	if row.Order, err = json.Marshal(order); err != nil {
		return packageRow{}, fmt.Errorf("failed to marshal order: %w", err)
	}
	if row.Insights, err = json.Marshal(r.Insights); err != nil {
		return packageRow{}, fmt.Errorf("failed to marshal insights: %w", err)
	}
	if row.Recommendations, err = json.Marshal(recs); err != nil {
		return packageRow{}, fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if row.Errors, err = json.Marshal(errs); err != nil {
		return packageRow{}, fmt.Errorf("failed to marshal errors: %w", err)
	}
	return row, nil
}

func decodePackage(row packageRow, docs []types.GeneratedDocument) (*types.PackageResult, error) {
	r := &types.PackageResult{
		Status:    row.Status,
		Documents: docs,
		Metadata: types.PackageMetadata{
			PackageID:      row.ID,
			StartedAt:      row.StartedAt,
			CompletedAt:    row.CompletedAt,
			DurationMs:     row.DurationMs,
			RequestedCount: row.RequestedCount,
			GeneratedCount: row.GeneratedCount,
			FallbackCount:  row.FallbackCount,
		},
	}
	if r.Documents == nil {
		r.Documents = []types.GeneratedDocument{}
	}

	if err := unmarshalColumn("document_order", row.Order, &r.Metadata.Order); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("insights", row.Insights, &r.Insights); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("recommendations", row.Recommendations, &r.Recommendations); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("errors", row.Errors, &r.Errors); err != nil {
		return nil, err
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	return r, nil
}

func encodeDocument(packageID uuid.UUID, position int, doc types.GeneratedDocument) (documentRow, error) {
	id := doc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return documentRow{}, fmt.Errorf("failed to marshal metadata for %s: %w", doc.Type, err)
	}
	quality, err := json.Marshal(doc.Quality)
	if err != nil {
		return documentRow{}, fmt.Errorf("failed to marshal quality for %s: %w", doc.Type, err)
	}
	return documentRow{
		ID:           id,
		PackageID:    packageID,
		Position:     position,
		DocumentType: string(doc.Type),
		Title:        doc.Title,
		Content:      doc.Content,
		QualityScore: doc.Quality.Score,
		IsFallback:   doc.IsFallback(),
		Metadata:     metadata,
		Quality:      quality,
	}, nil
}

func decodeDocument(row documentRow) (types.GeneratedDocument, error) {
	doc := types.GeneratedDocument{
		ID:      row.ID,
		Type:    types.DocumentType(row.DocumentType),
		Title:   row.Title,
		Content: row.Content,
	}
	if err := unmarshalColumn("metadata", row.Metadata, &doc.Metadata); err != nil {
		return types.GeneratedDocument{}, err
	}
	if err := unmarshalColumn("quality", row.Quality, &doc.Quality); err != nil {
		return types.GeneratedDocument{}, err
	}
	return doc, nil
}

func unmarshalColumn(column string, data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", column, err)
	}
	return nil
}
