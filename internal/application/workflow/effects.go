package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/profitum/dossier-engine/internal/domain/entity"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// ApplyEffects performs the side-effect writes of one validated transition:
// milestone timestamps, expert id swaps, and phase-owned metadata. It is the
// only place transition side effects live, so every screen sees the same ones.
//
// The dossier's Status has already advanced to target; from is the status the
// transition left. Timestamps are set exactly once and never rewritten.
func ApplyEffects(d *entity.Dossier, from, target domainwf.Status, payload TransitionPayload, now time.Time) {
	switch target {
	case domainwf.StatusExpertPendingValidation:
		expertID := payload.ExpertID
		d.ExpertPendingID = &expertID

	case domainwf.StatusExpertValidated:
		d.ExpertID = d.ExpertPendingID
		d.ExpertPendingID = nil
		if d.DateExpertAccepted == nil {
			t := now
			d.DateExpertAccepted = &t
		}

	case domainwf.StatusAdminValidated:
		// Reached from expert decline: the proposal is withdrawn and the
		// client may propose a different expert.
		if from == domainwf.StatusExpertPendingValidation {
			d.ExpertPendingID = nil
		}

	case domainwf.StatusComplementaryDocsPending:
		slots := make([]entity.RequestedDocument, 0, len(payload.RequestedDocuments))
		for _, req := range payload.RequestedDocuments {
			slots = append(slots, entity.RequestedDocument{
				ID:          uuid.NewString(),
				Description: req.Description,
				Required:    req.Required,
			})
		}
		d.Metadata.RequiredDocumentsExpert = slots
		requestedBy := ""
		if d.ExpertID != nil {
			requestedBy = *d.ExpertID
		}
		d.Metadata.ExpertRequest = &entity.ExpertRequestMeta{
			RequestedBy:    requestedBy,
			RequestedAt:    now,
			Message:        payload.Message,
			DocumentsCount: len(slots),
		}

	case domainwf.StatusAuditCompleted:
		d.MontantFinal = payload.MontantFinal
		d.Metadata.Audit = &entity.AuditMeta{
			Summary:     payload.AuditSummary,
			Findings:    payload.AuditFindings,
			CompletedAt: now,
		}

	case domainwf.StatusValidated:
		if d.DateAuditValidatedByClient == nil {
			t := now
			d.DateAuditValidatedByClient = &t
		}

	case domainwf.StatusImplementationInProgress:
		t := now
		d.Metadata.Implementation = &entity.ImplementationMeta{
			SubmissionStatus: entity.SubmissionPending,
			SubmittedAt:      &t,
		}

	case domainwf.StatusImplementationValidated:
		if d.Metadata.Implementation != nil {
			d.Metadata.Implementation.SubmissionStatus = payload.SubmissionStatus
			d.Metadata.Implementation.GrantedAmount = payload.GrantedAmount
		}

	case domainwf.StatusPaymentRequested:
		amount := 0.0
		if payload.RequestedAmount != nil {
			amount = *payload.RequestedAmount
		} else if d.MontantFinal != nil {
			amount = *d.MontantFinal
		}
		d.Metadata.Payment = &entity.PaymentMeta{
			RequestedAmount: amount,
			RequestedAt:     now,
		}

	case domainwf.StatusPaymentInProgress:
		if d.Metadata.Payment != nil {
			d.Metadata.Payment.Mode = payload.PaymentMode
		}

	case domainwf.StatusRefundCompleted:
		if d.DateRemboursement == nil {
			t := now
			d.DateRemboursement = &t
		}
	}
}
