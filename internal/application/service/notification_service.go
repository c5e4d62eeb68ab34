package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/domain/event"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// NotificationService derives role-scoped notifications from committed
// transitions and hands them to the external dispatcher. Records are persisted
// before dispatch; a delivery failure marks the record FAILED and is never
// surfaced to the transition that produced it.
type NotificationService interface {
	// HandleStatusChanged is registered on the event dispatcher
	HandleStatusChanged(ctx context.Context, evt *event.Event) error

	ListByDossier(ctx context.Context, dossierID string) ([]*entity.Notification, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	transport        port.NotificationDispatcher
	logger           Logger
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	transport port.NotificationDispatcher,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		transport:        transport,
		logger:           logger,
		now:              time.Now,
	}
}

// notifSpec describes one notification produced by an edge.
type notifSpec struct {
	recipient domainwf.Role
	notifType string
	title     string
	message   string
}

type transitionKey struct {
	from domainwf.Status
	to   domainwf.Status
}

// The notification table mirrors the transition table: one entry per edge,
// fanned out per recipient role.
var notificationRules = map[transitionKey][]notifSpec{
	{domainwf.StatusPendingUpload, domainwf.StatusPendingAdminValidation}: {
		{domainwf.RoleAdmin, entity.NotifDossierSubmitted, "Dossier submitted", "A dossier is ready for eligibility review."},
	},
	{domainwf.StatusPendingAdminValidation, domainwf.StatusAdminValidated}: {
		{domainwf.RoleClient, entity.NotifEligibilityValidated, "Eligibility confirmed", "Your dossier passed eligibility review. You can now select an expert."},
	},
	{domainwf.StatusPendingAdminValidation, domainwf.StatusAdminRejected}: {
		{domainwf.RoleClient, entity.NotifEligibilityRejected, "Dossier rejected", "Your dossier did not pass eligibility review."},
	},
	{domainwf.StatusAdminValidated, domainwf.StatusExpertPendingValidation}: {
		{domainwf.RoleExpert, entity.NotifExpertProposed, "New assignment proposal", "A client proposed you on a dossier. Accept or decline."},
		{domainwf.RoleAdmin, entity.NotifExpertProposed, "Expert proposed", "An expert was proposed on a dossier."},
	},
	{domainwf.StatusExpertPendingValidation, domainwf.StatusExpertValidated}: {
		{domainwf.RoleClient, entity.NotifExpertAssigned, "Expert assigned", "Your expert accepted the assignment."},
		{domainwf.RoleAdmin, entity.NotifExpertAssigned, "Expert assigned", "An expert accepted an assignment."},
	},
	{domainwf.StatusExpertPendingValidation, domainwf.StatusAdminValidated}: {
		{domainwf.RoleClient, entity.NotifExpertDeclined, "Expert declined", "The proposed expert declined. Please select another expert."},
		{domainwf.RoleAdmin, entity.NotifExpertDeclined, "Expert declined", "A proposed expert declined an assignment."},
	},
	{domainwf.StatusExpertValidated, domainwf.StatusComplementaryDocsPending}: {
		{domainwf.RoleClient, entity.NotifDocumentsRequested, "Documents requested", "Your expert needs complementary documents to proceed."},
	},
	{domainwf.StatusComplementaryDocsPending, domainwf.StatusComplementaryDocsSent}: {
		{domainwf.RoleExpert, entity.NotifDocumentsSubmitted, "Documents submitted", "The client provided the requested documents."},
	},
	{domainwf.StatusExpertValidated, domainwf.StatusAuditInProgress}: {
		{domainwf.RoleClient, entity.NotifAuditStarted, "Audit started", "Your expert started the audit."},
	},
	{domainwf.StatusComplementaryDocsSent, domainwf.StatusAuditInProgress}: {
		{domainwf.RoleClient, entity.NotifAuditStarted, "Audit started", "Your expert started the audit."},
	},
	{domainwf.StatusAuditInProgress, domainwf.StatusAuditCompleted}: {
		{domainwf.RoleClient, entity.NotifAuditCompleted, "Audit completed", "The audit is complete. Please review and validate the result."},
		{domainwf.RoleAdmin, entity.NotifAuditCompleted, "Audit completed", "An audit was completed."},
	},
	{domainwf.StatusAuditCompleted, domainwf.StatusValidated}: {
		{domainwf.RoleExpert, entity.NotifAuditValidated, "Audit validated", "The client validated the audit result."},
		{domainwf.RoleAdmin, entity.NotifAuditValidated, "Audit validated", "A client validated an audit result."},
	},
	{domainwf.StatusValidated, domainwf.StatusImplementationInProgress}: {
		{domainwf.RoleClient, entity.NotifImplementationSubmitted, "Submission in progress", "Your dossier was submitted to the administration."},
	},
	{domainwf.StatusImplementationInProgress, domainwf.StatusImplementationValidated}: {
		{domainwf.RoleClient, entity.NotifImplementationValidated, "Submission confirmed", "The administration confirmed your submission."},
		{domainwf.RoleExpert, entity.NotifImplementationValidated, "Submission confirmed", "The administration confirmed a submission."},
	},
	{domainwf.StatusImplementationValidated, domainwf.StatusPaymentRequested}: {
		{domainwf.RoleClient, entity.NotifPaymentRequested, "Payment requested", "The refund payment was requested."},
	},
	{domainwf.StatusPaymentRequested, domainwf.StatusPaymentInProgress}: {
		{domainwf.RoleClient, entity.NotifPaymentRecorded, "Payment in progress", "Your refund payment is being processed."},
	},
	{domainwf.StatusPaymentInProgress, domainwf.StatusRefundCompleted}: {
		{domainwf.RoleClient, entity.NotifRefundCompleted, "Refund received", "Your refund is complete. The dossier is closed."},
		{domainwf.RoleExpert, entity.NotifRefundCompleted, "Dossier closed", "A dossier you audited reached refund completion."},
	},
}

// HandleStatusChanged fans a committed transition out to its notifications
func (s *notificationServiceImpl) HandleStatusChanged(ctx context.Context, evt *event.Event) error {
	key := transitionKey{
		from: domainwf.Status(evt.PayloadString("previous_status")),
		to:   domainwf.Status(evt.PayloadString("new_status")),
	}
	specs, ok := notificationRules[key]
	if !ok {
		return nil
	}

	for _, spec := range specs {
		n := &entity.Notification{
			ID:        uuid.NewString(),
			DossierID: evt.DossierID,
			Recipient: spec.recipient,
			Type:      spec.notifType,
			Title:     spec.title,
			Message:   spec.message,
			Status:    entity.NotificationStatusPending,
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
		}

		if err := s.notificationRepo.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		if err := s.transport.Dispatch(ctx, n); err != nil {
			s.logger.Error("Notification dispatch failed",
				"notification_id", n.ID,
				"dossier_id", n.DossierID,
				"type", n.Type,
				"error", err,
			)
			if updErr := s.notificationRepo.UpdateStatus(ctx, n.ID, entity.NotificationStatusFailed); updErr != nil {
				s.logger.Error("Failed to mark notification failed", "notification_id", n.ID, "error", updErr)
			}
			continue
		}

		if err := s.notificationRepo.UpdateStatus(ctx, n.ID, entity.NotificationStatusSent); err != nil {
			s.logger.Error("Failed to mark notification sent", "notification_id", n.ID, "error", err)
		}
	}
	return nil
}

func (s *notificationServiceImpl) ListByDossier(ctx context.Context, dossierID string) ([]*entity.Notification, error) {
	return s.notificationRepo.GetByDossierID(ctx, dossierID)
}
