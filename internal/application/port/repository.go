package port

import (
	"context"

	"github.com/profitum/dossier-engine/internal/domain/entity"
)

// DossierRepository defines persistence operations for Dossier.
// There is deliberately no status setter: all status writes go through
// UpdateWithVersion so a transition is either applied whole or not at all.
type DossierRepository interface {
	Create(ctx context.Context, d *entity.Dossier) error
	GetByID(ctx context.Context, id string) (*entity.Dossier, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*entity.Dossier, error)
	ListByExpert(ctx context.Context, expertID string, limit, offset int) ([]*entity.Dossier, error)

	// UpdateWithVersion persists the dossier conditioned on d.Version matching
	// the stored row. On success the stored version is incremented and d.Version
	// is updated to match. A stale version returns workflow.ErrConcurrentModification.
	UpdateWithVersion(ctx context.Context, d *entity.Dossier) error
}

// HistoryRepository defines persistence operations for DossierHistory
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.DossierHistory) error
	GetByDossierID(ctx context.Context, dossierID string) ([]*entity.DossierHistory, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByDossierID(ctx context.Context, dossierID string) ([]*entity.Notification, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

// TransactionManager executes a function within a database transaction.
// The transaction is carried on the context and picked up by repositories.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
