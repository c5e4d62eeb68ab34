package port

import (
	"context"

	"github.com/profitum/dossier-engine/internal/domain/entity"
)

// DocumentStorage is the external document-storage collaborator. The engine
// exchanges references only; bytes never pass through here.
type DocumentStorage interface {
	// Register records a document reference for a dossier and category,
	// returning the stored reference with its identifier and URL.
	Register(ctx context.Context, ref *entity.DocumentRef) error

	// ListByDossier returns every reference known for the dossier.
	ListByDossier(ctx context.Context, dossierID string) ([]*entity.DocumentRef, error)

	// ListByCategory returns the dossier's references in one category.
	ListByCategory(ctx context.Context, dossierID, category string) ([]*entity.DocumentRef, error)

	// Delete removes a reference. The collaborator owns actual file deletion.
	Delete(ctx context.Context, id string) error
}

// NotificationDispatcher is the external delivery transport. Dispatch failures
// are the collaborator's to retry; they never roll back a committed transition.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *entity.Notification) error
}

// ExpertDirectory is the external expert-search/matching collaborator, reduced
// to the one check the assignment coordinator needs.
type ExpertDirectory interface {
	// IsEligible reports whether the expert is approved for the product category.
	IsEligible(ctx context.Context, expertID, produitID string) (bool, error)
}
