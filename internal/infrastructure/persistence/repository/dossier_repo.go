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

// DossierRepository implements port.DossierRepository
type DossierRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDossierRepository creates a new dossier repository
func NewDossierRepository(db *sql.DB, logger *zap.Logger) port.DossierRepository {
	return &DossierRepository{
		db:     db,
		logger: logger,
	}
}

const dossierColumns = `
	id, client_id, produit_id, expert_id, expert_pending_id, status,
	current_step, progress, charte_signed, charte_signed_at,
	montant_estime, montant_final, metadata,
	date_expert_accepted, date_audit_validated_by_client, date_remboursement,
	version, created_at, updated_at
`

// Create inserts a new dossier at version 1
func (r *DossierRepository) Create(ctx context.Context, d *entity.Dossier) error {
	query := `
		INSERT INTO dossiers (` + dossierColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	d.Version = 1
	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		d.ID,
		d.ClientID,
		d.ProduitID,
		d.ExpertID,
		d.ExpertPendingID,
		d.Status.String(),
		d.CurrentStep,
		d.Progress,
		d.CharteSigned,
		d.CharteSignedAt,
		d.MontantEstime,
		d.MontantFinal,
		d.Metadata,
		d.DateExpertAccepted,
		d.DateAuditValidatedByClient,
		d.DateRemboursement,
		d.Version,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create dossier", zap.String("id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to create dossier: %w", err)
	}

	return nil
}

// GetByID retrieves a dossier by ID
func (r *DossierRepository) GetByID(ctx context.Context, id string) (*entity.Dossier, error) {
	query := `SELECT ` + dossierColumns + ` FROM dossiers WHERE id = ?`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id)
	d, err := scanDossier(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get dossier", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get dossier: %w", err)
	}

	return d, nil
}

// ListByClient retrieves a client's dossiers, newest first
func (r *DossierRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*entity.Dossier, error) {
	query := `
		SELECT ` + dossierColumns + `
		FROM dossiers
		WHERE client_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.list(ctx, query, clientID, limit, offset)
}

// ListByExpert retrieves an expert's dossiers, assigned or pending, newest first
func (r *DossierRepository) ListByExpert(ctx context.Context, expertID string, limit, offset int) ([]*entity.Dossier, error) {
	query := `
		SELECT ` + dossierColumns + `
		FROM dossiers
		WHERE expert_id = ? OR expert_pending_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.list(ctx, query, expertID, expertID, limit, offset)
}

func (r *DossierRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Dossier, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list dossiers", zap.Error(err))
		return nil, fmt.Errorf("failed to list dossiers: %w", err)
	}
	defer rows.Close()

	var dossiers []*entity.Dossier
	for rows.Next() {
		d, err := scanDossier(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dossier: %w", err)
		}
		dossiers = append(dossiers, d)
	}

	return dossiers, rows.Err()
}

// UpdateWithVersion persists the dossier conditioned on its version matching
// the stored row. A stale version returns workflow.ErrConcurrentModification.
func (r *DossierRepository) UpdateWithVersion(ctx context.Context, d *entity.Dossier) error {
	query := `
		UPDATE dossiers SET
			expert_id = ?, expert_pending_id = ?, status = ?,
			current_step = ?, progress = ?, charte_signed = ?, charte_signed_at = ?,
			montant_estime = ?, montant_final = ?, metadata = ?,
			date_expert_accepted = ?, date_audit_validated_by_client = ?, date_remboursement = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		d.ExpertID,
		d.ExpertPendingID,
		d.Status.String(),
		d.CurrentStep,
		d.Progress,
		d.CharteSigned,
		d.CharteSignedAt,
		d.MontantEstime,
		d.MontantFinal,
		d.Metadata,
		d.DateExpertAccepted,
		d.DateAuditValidatedByClient,
		d.DateRemboursement,
		d.UpdatedAt,
		d.ID,
		d.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update dossier", zap.String("id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to update dossier: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: dossier %s at version %d", workflow.ErrConcurrentModification, d.ID, d.Version)
	}

	d.Version++
	return nil
}

type scanFunc func(dest ...interface{}) error

func scanDossier(scan scanFunc) (*entity.Dossier, error) {
	var d entity.Dossier
	var (
		expertID          sql.NullString
		expertPendingID   sql.NullString
		status            string
		charteSignedAt    sql.NullTime
		montantFinal      sql.NullFloat64
		dateAccepted      sql.NullTime
		dateValidated     sql.NullTime
		dateRemboursement sql.NullTime
	)

	err := scan(
		&d.ID,
		&d.ClientID,
		&d.ProduitID,
		&expertID,
		&expertPendingID,
		&status,
		&d.CurrentStep,
		&d.Progress,
		&d.CharteSigned,
		&charteSignedAt,
		&d.MontantEstime,
		&montantFinal,
		&d.Metadata,
		&dateAccepted,
		&dateValidated,
		&dateRemboursement,
		&d.Version,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = workflow.Status(status)
	if expertID.Valid {
		d.ExpertID = &expertID.String
	}
	if expertPendingID.Valid {
		d.ExpertPendingID = &expertPendingID.String
	}
	if charteSignedAt.Valid {
		d.CharteSignedAt = &charteSignedAt.Time
	}
	if montantFinal.Valid {
		d.MontantFinal = &montantFinal.Float64
	}
	if dateAccepted.Valid {
		d.DateExpertAccepted = &dateAccepted.Time
	}
	if dateValidated.Valid {
		d.DateAuditValidatedByClient = &dateValidated.Time
	}
	if dateRemboursement.Valid {
		d.DateRemboursement = &dateRemboursement.Time
	}

	return &d, nil
}

// Verify interface compliance
var _ port.DossierRepository = (*DossierRepository)(nil)
