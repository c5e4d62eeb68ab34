package entity

import (
	"time"

	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

// Notification is a role-scoped message produced by a transition. The record
// is persisted before dispatch; delivery transport belongs to the external
// dispatcher collaborator.
type Notification struct {
	ID        string        `json:"id"`
	DossierID string        `json:"dossier_id"`
	Recipient workflow.Role `json:"recipient"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
