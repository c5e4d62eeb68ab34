package directory

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/port"
)

// ExpertDirectory is a sqlite implementation of port.ExpertDirectory, backed
// by the expert approval table maintained by the matching platform.
type ExpertDirectory struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpertDirectory creates a new expert directory
func NewExpertDirectory(db *sql.DB, logger *zap.Logger) port.ExpertDirectory {
	return &ExpertDirectory{
		db:     db,
		logger: logger,
	}
}

// IsEligible reports whether the expert is approved for the product category
func (d *ExpertDirectory) IsEligible(ctx context.Context, expertID, produitID string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM expert_produits ep
		JOIN experts e ON e.id = ep.expert_id
		WHERE ep.expert_id = ? AND ep.produit_id = ? AND e.approved = 1
	`

	var count int
	err := d.db.QueryRowContext(ctx, query, expertID, produitID).Scan(&count)
	if err != nil {
		d.logger.Error("Failed to check expert eligibility",
			zap.String("expert_id", expertID),
			zap.String("produit_id", produitID),
			zap.Error(err))
		return false, fmt.Errorf("failed to check expert eligibility: %w", err)
	}

	return count > 0, nil
}

// Verify interface compliance
var _ port.ExpertDirectory = (*ExpertDirectory)(nil)
