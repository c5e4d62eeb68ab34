package service

import (
	"context"
	"fmt"

	"github.com/profitum/dossier-engine/internal/application/port"
	appwf "github.com/profitum/dossier-engine/internal/application/workflow"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// AssignmentService is the expert-proposal/acceptance/refusal sub-protocol
// nested inside the main state machine.
type AssignmentService interface {
	// ProposeExpert proposes an expert for the dossier. The expert must be
	// eligible for the dossier's product category and no other assignment may
	// be in flight.
	ProposeExpert(ctx context.Context, dossierID, expertID string) (*StatusView, error)

	// AcceptAssignment applies the expert's acceptance. A duplicate accept on
	// an already-validated dossier is a no-op success so at-least-once callers
	// can retry safely.
	AcceptAssignment(ctx context.Context, dossierID, expertID string) (*StatusView, error)

	// DeclineAssignment returns the dossier to admin_validated with the
	// pending proposal cleared; the client may propose a different expert.
	DeclineAssignment(ctx context.Context, dossierID, expertID string) (*StatusView, error)
}

type assignmentServiceImpl struct {
	dossiers  DossierService
	directory port.ExpertDirectory
	logger    Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(dossiers DossierService, directory port.ExpertDirectory, logger Logger) AssignmentService {
	return &assignmentServiceImpl{
		dossiers:  dossiers,
		directory: directory,
		logger:    logger,
	}
}

func (s *assignmentServiceImpl) ProposeExpert(ctx context.Context, dossierID, expertID string) (*StatusView, error) {
	d, err := s.dossiers.GetDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}

	if d.ExpertID != nil || d.ExpertPendingID != nil {
		return nil, fmt.Errorf("%w: dossier %s already has an expert assignment in flight",
			domainwf.ErrInvalidTransition, dossierID)
	}

	eligible, err := s.directory.IsEligible(ctx, expertID, d.ProduitID)
	if err != nil {
		return nil, fmt.Errorf("check expert eligibility: %w", err)
	}
	if !eligible {
		return nil, fmt.Errorf("%w: expert %s is not approved for product %s",
			domainwf.ErrInvalidTransition, expertID, d.ProduitID)
	}

	return s.dossiers.RequestTransition(ctx, dossierID, domainwf.RoleClient,
		domainwf.StatusExpertPendingValidation, appwf.TransitionPayload{ExpertID: expertID})
}

func (s *assignmentServiceImpl) AcceptAssignment(ctx context.Context, dossierID, expertID string) (*StatusView, error) {
	d, err := s.dossiers.GetDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}

	// Idempotence: a duplicate accept from the same expert is a success, not
	// an error, to tolerate at-least-once delivery from the calling layer.
	if d.Status == domainwf.StatusExpertValidated && d.ExpertID != nil && *d.ExpertID == expertID {
		s.logger.Info("Duplicate accept ignored", "dossier_id", dossierID, "expert_id", expertID)
		return s.dossiers.GetStatusView(ctx, dossierID, domainwf.RoleExpert)
	}

	if d.ExpertPendingID == nil || *d.ExpertPendingID != expertID {
		return nil, fmt.Errorf("%w: expert %s has no pending proposal on dossier %s",
			domainwf.ErrInvalidTransition, expertID, dossierID)
	}

	return s.dossiers.RequestTransition(ctx, dossierID, domainwf.RoleExpert,
		domainwf.StatusExpertValidated, appwf.TransitionPayload{ExpertID: expertID})
}

func (s *assignmentServiceImpl) DeclineAssignment(ctx context.Context, dossierID, expertID string) (*StatusView, error) {
	d, err := s.dossiers.GetDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}

	if d.ExpertPendingID == nil || *d.ExpertPendingID != expertID {
		return nil, fmt.Errorf("%w: expert %s has no pending proposal on dossier %s",
			domainwf.ErrInvalidTransition, expertID, dossierID)
	}

	return s.dossiers.RequestTransition(ctx, dossierID, domainwf.RoleExpert,
		domainwf.StatusAdminValidated, appwf.TransitionPayload{ExpertID: expertID})
}
