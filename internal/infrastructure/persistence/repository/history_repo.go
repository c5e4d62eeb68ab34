package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a transition record
func (r *HistoryRepository) Create(ctx context.Context, h *entity.DossierHistory) error {
	query := `
		INSERT INTO dossier_history (
			dossier_id, role, previous_status, new_status, action, at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		h.DossierID,
		h.Role.String(),
		h.PreviousStatus.String(),
		h.NewStatus.String(),
		h.Action,
		h.At,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.String("dossier_id", h.DossierID), zap.Error(err))
		return fmt.Errorf("failed to create history record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// GetByDossierID retrieves a dossier's transitions in the order they happened
func (r *HistoryRepository) GetByDossierID(ctx context.Context, dossierID string) ([]*entity.DossierHistory, error) {
	query := `
		SELECT id, dossier_id, role, previous_status, new_status, action, at
		FROM dossier_history
		WHERE dossier_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, dossierID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.String("dossier_id", dossierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*entity.DossierHistory
	for rows.Next() {
		var h entity.DossierHistory
		var role, prev, next string

		err := rows.Scan(&h.ID, &h.DossierID, &role, &prev, &next, &h.Action, &h.At)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		h.Role = workflow.Role(role)
		h.PreviousStatus = workflow.Status(prev)
		h.NewStatus = workflow.Status(next)
		records = append(records, &h)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
