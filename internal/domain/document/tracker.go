// Package document computes, per lifecycle phase, which document slots are
// required and whether they are fulfilled. Documents themselves live with the
// external storage collaborator; the tracker only consumes reference listings
// and metadata upload flags.
package document

import (
	"context"
	"fmt"

	"github.com/profitum/dossier-engine/internal/domain/entity"
)

// Phase identifies a document requirement set.
type Phase string

const (
	// PhasePreEligibility gates pending_upload -> pending_admin_validation
	PhasePreEligibility Phase = "pre_eligibility"
	// PhaseExpertRequested gates the complementary-documents branch
	PhaseExpertRequested Phase = "expert_requested"
	// PhaseAudit covers optional audit attachments; it never blocks
	PhaseAudit Phase = "audit"
)

// Slot is one document requirement.
type Slot struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

var preEligibilitySlots = []Slot{
	{Category: entity.DocCategoryPayrollStatements, Label: "Payroll statements (last 3 years)", Required: true},
	{Category: entity.DocCategoryEmploymentContracts, Label: "Employment contracts", Required: true},
	{Category: entity.DocCategoryExpenseReceipts, Label: "Expense receipts", Required: true},
	{Category: entity.DocCategoryDSNDeclarations, Label: "Social declarations (DSN)", Required: true},
	{Category: entity.DocCategoryCollectiveAgreements, Label: "Collective agreements", Required: false},
}

// PreEligibilitySlots returns the fixed pre-eligibility slot catalog.
func PreEligibilitySlots() []Slot {
	return append([]Slot(nil), preEligibilitySlots...)
}

// Lister exposes the storage collaborator's reference listing for one dossier.
type Lister interface {
	ListByDossier(ctx context.Context, dossierID string) ([]*entity.DocumentRef, error)
}

// Tracker evaluates slot fulfillment for a dossier.
type Tracker struct {
	docs Lister
}

// NewTracker creates a tracker backed by the given document listing.
func NewTracker(docs Lister) *Tracker {
	return &Tracker{docs: docs}
}

// IsSatisfied reports whether every required slot of the phase has at least
// one uploaded document.
func (t *Tracker) IsSatisfied(ctx context.Context, d *entity.Dossier, phase Phase) (bool, error) {
	missing, err := t.Missing(ctx, d, phase)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// Missing returns the required slots of the phase that are not yet fulfilled.
// Optional slots are never reported.
func (t *Tracker) Missing(ctx context.Context, d *entity.Dossier, phase Phase) ([]Slot, error) {
	switch phase {
	case PhasePreEligibility:
		return t.missingPreEligibility(ctx, d)
	case PhaseExpertRequested:
		return missingExpertRequested(d), nil
	case PhaseAudit:
		// Audit attachments are optional
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown document phase: %s", phase)
	}
}

func (t *Tracker) missingPreEligibility(ctx context.Context, d *entity.Dossier) ([]Slot, error) {
	refs, err := t.docs.ListByDossier(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents for dossier %s: %w", d.ID, err)
	}

	uploaded := make(map[string]bool)
	for _, ref := range refs {
		if ref.Uploaded {
			uploaded[ref.Category] = true
		}
	}

	var missing []Slot
	for _, slot := range preEligibilitySlots {
		if slot.Required && !uploaded[slot.Category] {
			missing = append(missing, slot)
		}
	}
	return missing, nil
}

func missingExpertRequested(d *entity.Dossier) []Slot {
	var missing []Slot
	for _, doc := range d.Metadata.RequiredDocumentsExpert {
		if doc.Required && !doc.Uploaded {
			missing = append(missing, Slot{
				Category: entity.DocCategoryExpertRequested,
				Label:    doc.Description,
				Required: true,
			})
		}
	}
	return missing
}

// Labels flattens slots to their display labels, in slot order.
func Labels(slots []Slot) []string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Label)
	}
	return labels
}
