package entity

import (
	"time"

	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

// Dossier is a single client case pursuing one eligibility product end-to-end.
//
// Status is the source of truth for all gating. CurrentStep and Progress are
// cached projections of Status, recomputed on every transition; they are never
// written independently. ExpertID and ExpertPendingID are mutually exclusive:
// at most one is non-nil at any time.
type Dossier struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	ProduitID       string          `json:"produit_id"`
	ExpertID        *string         `json:"expert_id,omitempty"`
	ExpertPendingID *string         `json:"expert_pending_id,omitempty"`
	Status          workflow.Status `json:"status"`
	CurrentStep     int             `json:"current_step"`
	Progress        int             `json:"progress"`
	CharteSigned    bool            `json:"charte_signed"`
	CharteSignedAt  *time.Time      `json:"charte_signed_at,omitempty"`
	MontantEstime   float64         `json:"montant_estime"`
	MontantFinal    *float64        `json:"montant_final,omitempty"`
	Metadata        Metadata        `json:"metadata"`

	// Milestone timestamps, each set exactly once at the transition that
	// reaches the corresponding status and never rewritten.
	DateExpertAccepted         *time.Time `json:"date_expert_accepted,omitempty"`
	DateAuditValidatedByClient *time.Time `json:"date_audit_validated_by_client,omitempty"`
	DateRemboursement          *time.Time `json:"date_remboursement,omitempty"`

	// Version backs the optimistic concurrency check on writes.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
