package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/profitum/dossier-engine/internal/application/dispatcher"
	"github.com/profitum/dossier-engine/internal/application/port"
	appwf "github.com/profitum/dossier-engine/internal/application/workflow"
	"github.com/profitum/dossier-engine/internal/domain/document"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/domain/event"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// ErrDossierNotFound indicates the requested dossier does not exist
var ErrDossierNotFound = errors.New("dossier not found")

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// StatusView is the role-scoped descriptor returned to callers. The same
// dossier produces different action lists for client, expert, and admin;
// everything else is identical across roles.
type StatusView struct {
	DossierID        string             `json:"dossier_id"`
	Status           domainwf.Status    `json:"status"`
	CurrentStep      int                `json:"current_step"`
	StepLabel        string             `json:"step_label"`
	Progress         int                `json:"progress"`
	Actions          []domainwf.Action  `json:"available_actions"`
	MissingDocuments []document.Slot    `json:"missing_documents,omitempty"`
	Notices          []domainwf.Notice  `json:"notices,omitempty"`
	ExpertID         *string            `json:"expert_id,omitempty"`
	ExpertPendingID  *string            `json:"expert_pending_id,omitempty"`
	CharteSigned     bool               `json:"charte_signed"`
	MontantFinal     *float64           `json:"montant_final,omitempty"`
}

// DossierService is the case lifecycle service, the only component external
// callers invoke. All status mutation goes through RequestTransition.
type DossierService interface {
	CreateDossier(ctx context.Context, clientID, produitID string, montantEstime float64) (*entity.Dossier, error)
	GetDossier(ctx context.Context, dossierID string) (*entity.Dossier, error)
	SignCharte(ctx context.Context, dossierID string) error
	RequestTransition(ctx context.Context, dossierID string, role domainwf.Role, target domainwf.Status, payload appwf.TransitionPayload) (*StatusView, error)
	GetStatusView(ctx context.Context, dossierID string, role domainwf.Role) (*StatusView, error)
	GetHistory(ctx context.Context, dossierID string) ([]*entity.DossierHistory, error)
	AttachRequestedDocument(ctx context.Context, dossierID, requestedDocID, documentRefID string) error
}

type dossierServiceImpl struct {
	dossierRepo port.DossierRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	tracker     *document.Tracker
	dispatcher  dispatcher.Dispatcher
	logger      Logger

	locker      *dossierLocker
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configures the dossier service
type Option func(*dossierServiceImpl)

// WithLockTimeout sets how long a transition waits for the per-dossier lock
func WithLockTimeout(d time.Duration) Option {
	return func(s *dossierServiceImpl) { s.lockTimeout = d }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *dossierServiceImpl) { s.now = now }
}

// NewDossierService creates a new DossierService
func NewDossierService(
	dossierRepo port.DossierRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	tracker *document.Tracker,
	disp dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) DossierService {
	s := &dossierServiceImpl{
		dossierRepo: dossierRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		tracker:     tracker,
		dispatcher:  disp,
		logger:      logger,
		locker:      newDossierLocker(),
		lockTimeout: 2 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDossier creates a dossier in pending_upload with its projection cached
func (s *dossierServiceImpl) CreateDossier(ctx context.Context, clientID, produitID string, montantEstime float64) (*entity.Dossier, error) {
	projection, err := domainwf.Project(domainwf.StatusPendingUpload)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &entity.Dossier{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		ProduitID:     produitID,
		Status:        domainwf.StatusPendingUpload,
		CurrentStep:   projection.Step,
		Progress:      projection.Progress,
		MontantEstime: montantEstime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.dossierRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create dossier: %w", err)
	}

	s.logger.Info("Dossier created",
		"dossier_id", d.ID, "client_id", clientID, "produit_id", produitID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDossierCreated, d.ID, map[string]interface{}{
			"client_id":  clientID,
			"produit_id": produitID,
		}))
	}

	return d, nil
}

// GetDossier returns the raw dossier record
func (s *dossierServiceImpl) GetDossier(ctx context.Context, dossierID string) (*entity.Dossier, error) {
	return s.load(ctx, dossierID)
}

// SignCharte marks the engagement charte as signed. Signing is idempotent and
// irreversible; it is a precondition for submitting the dossier.
func (s *dossierServiceImpl) SignCharte(ctx context.Context, dossierID string) error {
	release, err := s.locker.Acquire(ctx, dossierID, s.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	d, err := s.load(ctx, dossierID)
	if err != nil {
		return err
	}
	if d.CharteSigned {
		return nil
	}

	now := s.now()
	d.CharteSigned = true
	d.CharteSignedAt = &now
	d.UpdatedAt = now

	if err := s.dossierRepo.UpdateWithVersion(ctx, d); err != nil {
		return fmt.Errorf("sign charte for dossier %s: %w", dossierID, err)
	}

	s.logger.Info("Charte signed", "dossier_id", dossierID)
	return nil
}

// RequestTransition validates the edge against the transition table, applies
// the transition's side effects, recomputes the projection, and persists the
// whole change atomically. On any failure the dossier is left unmodified.
func (s *dossierServiceImpl) RequestTransition(
	ctx context.Context,
	dossierID string,
	role domainwf.Role,
	target domainwf.Status,
	payload appwf.TransitionPayload,
) (*StatusView, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainwf.ErrInvalidTransition, role)
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown target status %q", domainwf.ErrInvalidTransition, target)
	}

	release, err := s.locker.Acquire(ctx, dossierID, s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	d, err := s.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}

	from := d.Status
	machine := appwf.BuildDossierMachine(d, payload, s.tracker)
	if err := machine.Fire(ctx, role, target); err != nil {
		return nil, err
	}

	now := s.now()
	d.Status = machine.Status()
	appwf.ApplyEffects(d, from, d.Status, payload, now)

	projection, err := domainwf.Project(d.Status)
	if err != nil {
		return nil, err
	}
	d.CurrentStep = projection.Step
	d.Progress = projection.Progress
	d.UpdatedAt = now

	action := domainwf.ActionName(from, d.Status)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.dossierRepo.UpdateWithVersion(txCtx, d); err != nil {
			return err
		}
		return s.historyRepo.Create(txCtx, &entity.DossierHistory{
			DossierID:      d.ID,
			Role:           role,
			PreviousStatus: from,
			NewStatus:      d.Status,
			Action:         action,
			At:             now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("apply transition %s -> %s on dossier %s: %w", from, target, dossierID, err)
	}

	s.logger.Info("Transition applied",
		"dossier_id", d.ID,
		"previous_status", from.String(),
		"new_status", d.Status.String(),
		"role", role.String(),
		"step", d.CurrentStep,
		"progress", d.Progress,
	)

	// Notifications and report triggers ride on events after commit; their
	// failures never roll back the transition.
	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeStatusChanged, d.ID, map[string]interface{}{
			"previous_status": from.String(),
			"new_status":      d.Status.String(),
			"role":            role.String(),
			"action":          action,
		}))
	}

	return s.buildView(ctx, d, role)
}

// GetStatusView returns the read-only role-scoped descriptor
func (s *dossierServiceImpl) GetStatusView(ctx context.Context, dossierID string, role domainwf.Role) (*StatusView, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainwf.ErrInvalidTransition, role)
	}
	d, err := s.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, d, role)
}

// GetHistory returns the dossier's applied transitions, oldest first
func (s *dossierServiceImpl) GetHistory(ctx context.Context, dossierID string) ([]*entity.DossierHistory, error) {
	if _, err := s.load(ctx, dossierID); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByDossierID(ctx, dossierID)
}

// AttachRequestedDocument marks one expert-requested slot as fulfilled,
// linking the storage collaborator's document reference. Only the
// complementary-documents phase owns these metadata entries.
func (s *dossierServiceImpl) AttachRequestedDocument(ctx context.Context, dossierID, requestedDocID, documentRefID string) error {
	release, err := s.locker.Acquire(ctx, dossierID, s.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	d, err := s.load(ctx, dossierID)
	if err != nil {
		return err
	}
	if d.Status != domainwf.StatusComplementaryDocsPending {
		return fmt.Errorf("%w: dossier %s is not awaiting complementary documents",
			domainwf.ErrInvalidTransition, dossierID)
	}

	found := false
	now := s.now()
	for i := range d.Metadata.RequiredDocumentsExpert {
		slot := &d.Metadata.RequiredDocumentsExpert[i]
		if slot.ID != requestedDocID {
			continue
		}
		found = true
		if slot.Uploaded {
			return nil
		}
		slot.Uploaded = true
		slot.UploadedAt = &now
		slot.DocumentID = &documentRefID
	}
	if !found {
		return fmt.Errorf("requested document %s not found on dossier %s", requestedDocID, dossierID)
	}

	d.UpdatedAt = now
	if err := s.dossierRepo.UpdateWithVersion(ctx, d); err != nil {
		return fmt.Errorf("attach document on dossier %s: %w", dossierID, err)
	}
	return nil
}

func (s *dossierServiceImpl) load(ctx context.Context, dossierID string) (*entity.Dossier, error) {
	d, err := s.dossierRepo.GetByID(ctx, dossierID)
	if err != nil {
		return nil, fmt.Errorf("get dossier %s: %w", dossierID, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrDossierNotFound, dossierID)
	}
	return d, nil
}

func (s *dossierServiceImpl) buildView(ctx context.Context, d *entity.Dossier, role domainwf.Role) (*StatusView, error) {
	projection, err := domainwf.Project(d.Status)
	if err != nil {
		return nil, err
	}

	machine := appwf.BuildDossierMachine(d, appwf.TransitionPayload{}, s.tracker)
	view := &StatusView{
		DossierID:       d.ID,
		Status:          d.Status,
		CurrentStep:     projection.Step,
		StepLabel:       projection.StepLabel,
		Progress:        projection.Progress,
		Actions:         domainwf.Actions(machine, role),
		Notices:         projection.Notices,
		ExpertID:        d.ExpertID,
		ExpertPendingID: d.ExpertPendingID,
		CharteSigned:    d.CharteSigned,
		MontantFinal:    d.MontantFinal,
	}

	if phase, ok := documentPhaseFor(d.Status); ok {
		missing, err := s.tracker.Missing(ctx, d, phase)
		if err != nil {
			return nil, err
		}
		view.MissingDocuments = missing
	}
	return view, nil
}

// documentPhaseFor maps a status to the requirement phase its view reports.
func documentPhaseFor(status domainwf.Status) (document.Phase, bool) {
	switch status {
	case domainwf.StatusPendingUpload:
		return document.PhasePreEligibility, true
	case domainwf.StatusComplementaryDocsPending:
		return document.PhaseExpertRequested, true
	default:
		return "", false
	}
}

