package entity

import (
	"time"

	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

// DossierHistory is one applied transition, appended after every successful
// status change.
type DossierHistory struct {
	ID             int64           `json:"id"`
	DossierID      string          `json:"dossier_id"`
	Role           workflow.Role   `json:"role"`
	PreviousStatus workflow.Status `json:"previous_status"`
	NewStatus      workflow.Status `json:"new_status"`
	Action         string          `json:"action"`
	At             time.Time       `json:"at"`
}
