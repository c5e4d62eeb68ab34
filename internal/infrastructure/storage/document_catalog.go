package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/infrastructure/persistence/sqlite"
)

// DocumentCatalog is a sqlite implementation of port.DocumentStorage. It keeps
// references only; file bytes live wherever the URL points.
type DocumentCatalog struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentCatalog creates a new document catalog
func NewDocumentCatalog(db *sql.DB, logger *zap.Logger) port.DocumentStorage {
	return &DocumentCatalog{
		db:     db,
		logger: logger,
	}
}

// Register records a document reference
func (c *DocumentCatalog) Register(ctx context.Context, ref *entity.DocumentRef) error {
	query := `
		INSERT INTO document_refs (
			id, dossier_id, category, filename, url, uploaded, uploaded_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.executor(ctx).ExecContext(ctx, query,
		ref.ID,
		ref.DossierID,
		ref.Category,
		ref.Filename,
		ref.URL,
		ref.Uploaded,
		ref.UploadedAt,
		ref.CreatedAt,
	)
	if err != nil {
		c.logger.Error("Failed to register document",
			zap.String("dossier_id", ref.DossierID),
			zap.String("category", ref.Category),
			zap.Error(err))
		return fmt.Errorf("failed to register document: %w", err)
	}

	return nil
}

// ListByDossier returns every reference known for the dossier
func (c *DocumentCatalog) ListByDossier(ctx context.Context, dossierID string) ([]*entity.DocumentRef, error) {
	query := `
		SELECT id, dossier_id, category, filename, url, uploaded, uploaded_at, created_at
		FROM document_refs
		WHERE dossier_id = ?
		ORDER BY created_at ASC
	`
	return c.list(ctx, query, dossierID)
}

// ListByCategory returns the dossier's references in one category
func (c *DocumentCatalog) ListByCategory(ctx context.Context, dossierID, category string) ([]*entity.DocumentRef, error) {
	query := `
		SELECT id, dossier_id, category, filename, url, uploaded, uploaded_at, created_at
		FROM document_refs
		WHERE dossier_id = ? AND category = ?
		ORDER BY created_at ASC
	`
	return c.list(ctx, query, dossierID, category)
}

// Delete removes a reference
func (c *DocumentCatalog) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM document_refs WHERE id = ?`

	_, err := c.executor(ctx).ExecContext(ctx, query, id)
	if err != nil {
		c.logger.Error("Failed to delete document reference", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete document reference: %w", err)
	}

	return nil
}

func (c *DocumentCatalog) list(ctx context.Context, query string, args ...interface{}) ([]*entity.DocumentRef, error) {
	rows, err := c.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var refs []*entity.DocumentRef
	for rows.Next() {
		var ref entity.DocumentRef
		var uploadedAt sql.NullTime

		err := rows.Scan(
			&ref.ID,
			&ref.DossierID,
			&ref.Category,
			&ref.Filename,
			&ref.URL,
			&ref.Uploaded,
			&uploadedAt,
			&ref.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document reference: %w", err)
		}

		if uploadedAt.Valid {
			ref.UploadedAt = &uploadedAt.Time
		}
		refs = append(refs, &ref)
	}

	return refs, rows.Err()
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (c *DocumentCatalog) executor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return c.db
}

// Verify interface compliance
var _ port.DocumentStorage = (*DocumentCatalog)(nil)
