package workflow

import (
	"context"
	"fmt"

	"github.com/profitum/dossier-engine/internal/domain/document"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// BuildDossierMachine configures the full dossier transition table and returns
// a machine positioned at the dossier's current status. Machines are cheap and
// built per request; guards close over the dossier, the request payload, and
// the document tracker.
//
// This table is the single source of truth for gating: role-scoped UI actions
// are derived from it through domainwf.Actions, never hand-written per screen.
func BuildDossierMachine(
	d *entity.Dossier,
	payload TransitionPayload,
	tracker *document.Tracker,
) domainwf.Machine {
	b := domainwf.NewBuilder()

	b.Configure(domainwf.StatusPendingUpload).
		PermitIf(domainwf.RoleClient, domainwf.StatusPendingAdminValidation,
			requireCharteSigned(d, documentsSatisfied(tracker, d, document.PhasePreEligibility)))

	b.Configure(domainwf.StatusPendingAdminValidation).
		Permit(domainwf.RoleAdmin, domainwf.StatusAdminValidated).
		Permit(domainwf.RoleAdmin, domainwf.StatusAdminRejected)

	b.Configure(domainwf.StatusAdminValidated).
		PermitIf(domainwf.RoleClient, domainwf.StatusExpertPendingValidation,
			func(ctx context.Context) error {
				if d.ExpertID != nil || d.ExpertPendingID != nil {
					return fmt.Errorf("%w: dossier %s already has an expert assignment in flight",
						domainwf.ErrInvalidTransition, d.ID)
				}
				if payload.ExpertID == "" {
					return fmt.Errorf("%w: propose_expert requires an expert id", domainwf.ErrInvalidTransition)
				}
				return nil
			})

	b.Configure(domainwf.StatusExpertPendingValidation).
		PermitIf(domainwf.RoleExpert, domainwf.StatusExpertValidated,
			func(ctx context.Context) error {
				if d.ExpertPendingID == nil {
					return fmt.Errorf("%w: no pending expert to accept", domainwf.ErrInvalidTransition)
				}
				return nil
			}).
		Permit(domainwf.RoleExpert, domainwf.StatusAdminValidated)

	b.Configure(domainwf.StatusExpertValidated).
		PermitIf(domainwf.RoleExpert, domainwf.StatusComplementaryDocsPending,
			func(ctx context.Context) error {
				if len(payload.RequestedDocuments) == 0 {
					return fmt.Errorf("%w: request_documents requires at least one document", domainwf.ErrInvalidTransition)
				}
				return nil
			}).
		Permit(domainwf.RoleExpert, domainwf.StatusAuditInProgress)

	b.Configure(domainwf.StatusComplementaryDocsPending).
		PermitIf(domainwf.RoleClient, domainwf.StatusComplementaryDocsSent,
			documentsSatisfied(tracker, d, document.PhaseExpertRequested))

	b.Configure(domainwf.StatusComplementaryDocsSent).
		Permit(domainwf.RoleExpert, domainwf.StatusAuditInProgress)

	b.Configure(domainwf.StatusAuditInProgress).
		PermitIf(domainwf.RoleExpert, domainwf.StatusAuditCompleted,
			func(ctx context.Context) error {
				if payload.MontantFinal == nil || payload.AuditSummary == "" {
					return fmt.Errorf("%w: complete_audit requires montant_final and an audit summary",
						domainwf.ErrInvalidTransition)
				}
				return nil
			})

	// The client, not the admin, confirms the audit result.
	b.Configure(domainwf.StatusAuditCompleted).
		Permit(domainwf.RoleClient, domainwf.StatusValidated)

	b.Configure(domainwf.StatusValidated).
		Permit(domainwf.RoleAdmin, domainwf.StatusImplementationInProgress).
		Permit(domainwf.RoleExpert, domainwf.StatusImplementationInProgress)

	b.Configure(domainwf.StatusImplementationInProgress).
		PermitIf(domainwf.RoleAdmin, domainwf.StatusImplementationValidated,
			func(ctx context.Context) error {
				if payload.SubmissionStatus == "" {
					return fmt.Errorf("%w: validate_implementation requires a submission status",
						domainwf.ErrInvalidTransition)
				}
				return nil
			})

	b.Configure(domainwf.StatusImplementationValidated).
		Permit(domainwf.RoleAdmin, domainwf.StatusPaymentRequested)

	b.Configure(domainwf.StatusPaymentRequested).
		PermitIf(domainwf.RoleAdmin, domainwf.StatusPaymentInProgress,
			func(ctx context.Context) error {
				if payload.PaymentMode == "" {
					return fmt.Errorf("%w: record_payment requires a payment mode", domainwf.ErrInvalidTransition)
				}
				return nil
			})

	b.Configure(domainwf.StatusPaymentInProgress).
		Permit(domainwf.RoleAdmin, domainwf.StatusRefundCompleted)

	// admin_rejected and refund_completed are terminal: no outgoing edges,
	// so every attempt from them fails with ErrInvalidTransition.

	return b.Build(d.Status)
}

// documentsSatisfied builds a guard that fails with a RequirementsError naming
// the unfulfilled required slots of the phase.
func documentsSatisfied(tracker *document.Tracker, d *entity.Dossier, phase document.Phase) domainwf.GuardFunc {
	return func(ctx context.Context) error {
		missing, err := tracker.Missing(ctx, d, phase)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &domainwf.RequirementsError{
				Phase:   string(phase),
				Missing: document.Labels(missing),
			}
		}
		return nil
	}
}

// requireCharteSigned wraps a guard with the charte precondition.
func requireCharteSigned(d *entity.Dossier, next domainwf.GuardFunc) domainwf.GuardFunc {
	return func(ctx context.Context) error {
		if !d.CharteSigned {
			return fmt.Errorf("%w: charte must be signed before submission", domainwf.ErrInvalidTransition)
		}
		return next(ctx)
	}
}
