package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/docpack/internal/types"
)

// SavePackage stores a package and its documents. Documents are inserted
// concurrently; if any insert fails the package row (and, by cascade, its
// documents) is removed again.
func (db *DB) SavePackage(ctx context.Context, clientID string, result *types.PackageResult) error {
	if result == nil {
		return fmt.Errorf("failed to save package: result is nil")
	}
	if result.Metadata.PackageID == uuid.Nil {
		return fmt.Errorf("failed to save package: missing package id")
	}

	row, err := encodePackage(clientID, result)
	if err != nil {
		return err
	}
	docs := make([]documentRow, len(result.Documents))
	for i, doc := range result.Documents {
		if docs[i], err = encodeDocument(row.ID, i, doc); err != nil {
			return err
		}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO packages (id, client_id, status, requested_count, generated_count, fallback_count,
		                       duration_ms, document_order, insights, recommendations, errors, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		row.ID, row.ClientID, row.Status, row.RequestedCount, row.GeneratedCount, row.FallbackCount,
		row.DurationMs, row.Order, row.Insights, row.Recommendations, row.Errors, row.StartedAt, row.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save package %s: %w", row.ID, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	workers := db.insertWorkers
	if workers <= 0 {
		workers = DefaultInsertWorkers
	}
	g.SetLimit(workers)
	for _, d := range docs {
		g.Go(func() error {
			_, err := db.pool.Exec(gCtx,
				`INSERT INTO package_documents (id, package_id, position, document_type, title, content,
				                                quality_score, is_fallback, metadata, quality)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				d.ID, d.PackageID, d.Position, d.DocumentType, d.Title, d.Content,
				d.QualityScore, d.IsFallback, d.Metadata, d.Quality,
			)
			if err != nil {
				return fmt.Errorf("failed to save document %s: %w", d.DocumentType, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if _, delErr := db.pool.Exec(context.WithoutCancel(ctx), `DELETE FROM packages WHERE id = $1`, row.ID); delErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back package %s: %w", row.ID, delErr))
		}
		return err
	}
	return nil
}

// GetPackage returns a stored package with its documents in generation order.
func (db *DB) GetPackage(ctx context.Context, id uuid.UUID) (*types.PackageResult, error) {
	var row packageRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, client_id, status, requested_count, generated_count, fallback_count, duration_ms,
		        document_order, insights, recommendations, errors, started_at, completed_at
		 FROM packages WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.ClientID, &row.Status, &row.RequestedCount, &row.GeneratedCount, &row.FallbackCount,
		&row.DurationMs, &row.Order, &row.Insights, &row.Recommendations, &row.Errors, &row.StartedAt, &row.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get package %s: %w", id, err)
	}

	docs, err := db.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodePackage(row, docs)
}

// ListPackages returns the most recent packages, newest first. An empty
// clientID lists packages for every client.
func (db *DB) ListPackages(ctx context.Context, clientID string, limit int) ([]PackageSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, client_id, status, requested_count, generated_count, fallback_count,
		        duration_ms, created_at, completed_at
		 FROM packages
		 WHERE ($1 = '' OR client_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		clientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	out := []PackageSummary{}
	for rows.Next() {
		var s PackageSummary
		if err := rows.Scan(&s.ID, &s.ClientID, &s.Status, &s.RequestedCount, &s.GeneratedCount,
			&s.FallbackCount, &s.DurationMs, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate packages: %w", err)
	}
	return out, nil
}

// ListDocuments returns the documents of a package in generation order.
func (db *DB) ListDocuments(ctx context.Context, packageID uuid.UUID) ([]types.GeneratedDocument, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, package_id, position, document_type, title, content, quality_score, is_fallback, metadata, quality
		 FROM package_documents
		 WHERE package_id = $1
		 ORDER BY position`,
		packageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := []types.GeneratedDocument{}
	for rows.Next() {
		var r documentRow
		if err := rows.Scan(&r.ID, &r.PackageID, &r.Position, &r.DocumentType, &r.Title, &r.Content,
			&r.QualityScore, &r.IsFallback, &r.Metadata, &r.Quality); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDocument(r)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return out, nil
}

// DeletePackage removes a package and its documents.
func (db *DB) DeletePackage(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}
