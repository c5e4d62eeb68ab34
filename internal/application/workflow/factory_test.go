package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/profitum/dossier-engine/internal/domain/document"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

type fakeDocLister struct {
	refs []*entity.DocumentRef
}

func (f *fakeDocLister) ListByDossier(ctx context.Context, dossierID string) ([]*entity.DocumentRef, error) {
	return f.refs, nil
}

func allPreEligibilityRefs() []*entity.DocumentRef {
	now := time.Now()
	categories := []string{
		entity.DocCategoryPayrollStatements,
		entity.DocCategoryEmploymentContracts,
		entity.DocCategoryExpenseReceipts,
		entity.DocCategoryDSNDeclarations,
	}
	refs := make([]*entity.DocumentRef, 0, len(categories))
	for _, cat := range categories {
		refs = append(refs, &entity.DocumentRef{
			ID:         cat + "-ref",
			DossierID:  "d1",
			Category:   cat,
			Uploaded:   true,
			UploadedAt: &now,
		})
	}
	return refs
}

func emptyTracker() *document.Tracker {
	return document.NewTracker(&fakeDocLister{})
}

func fullTracker() *document.Tracker {
	return document.NewTracker(&fakeDocLister{refs: allPreEligibilityRefs()})
}

func newDossier(status domainwf.Status) *entity.Dossier {
	return &entity.Dossier{
		ID:       "d1",
		ClientID: "c1",
		Status:   status,
	}
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

// walkStep is one transition of the happy path, with the payload each edge needs.
type walkStep struct {
	role    domainwf.Role
	target  domainwf.Status
	payload TransitionPayload
}

func TestBuildDossierMachine_HappyPath(t *testing.T) {
	d := newDossier(domainwf.StatusPendingUpload)
	d.CharteSigned = true

	steps := []walkStep{
		{domainwf.RoleClient, domainwf.StatusPendingAdminValidation, TransitionPayload{}},
		{domainwf.RoleAdmin, domainwf.StatusAdminValidated, TransitionPayload{}},
		{domainwf.RoleClient, domainwf.StatusExpertPendingValidation, TransitionPayload{ExpertID: "e1"}},
		{domainwf.RoleExpert, domainwf.StatusExpertValidated, TransitionPayload{}},
		{domainwf.RoleExpert, domainwf.StatusAuditInProgress, TransitionPayload{}},
		{domainwf.RoleExpert, domainwf.StatusAuditCompleted, TransitionPayload{MontantFinal: floatPtr(12000), AuditSummary: "CIR eligible"}},
		{domainwf.RoleClient, domainwf.StatusValidated, TransitionPayload{}},
		{domainwf.RoleAdmin, domainwf.StatusImplementationInProgress, TransitionPayload{}},
		{domainwf.RoleAdmin, domainwf.StatusImplementationValidated, TransitionPayload{SubmissionStatus: entity.SubmissionAccepted}},
		{domainwf.RoleAdmin, domainwf.StatusPaymentRequested, TransitionPayload{}},
		{domainwf.RoleAdmin, domainwf.StatusPaymentInProgress, TransitionPayload{PaymentMode: entity.PaymentModeBankTransfer}},
		{domainwf.RoleAdmin, domainwf.StatusRefundCompleted, TransitionPayload{}},
	}

	for _, step := range steps {
		m := BuildDossierMachine(d, step.payload, fullTracker())
		if err := m.Fire(context.Background(), step.role, step.target); err != nil {
			t.Fatalf("Fire(%s, %s -> %s) failed: %v", step.role, d.Status, step.target, err)
		}
		ApplyEffects(d, d.Status, step.target, step.payload, time.Now())
		d.Status = step.target
	}

	if d.Status != domainwf.StatusRefundCompleted {
		t.Errorf("final status = %s, want %s", d.Status, domainwf.StatusRefundCompleted)
	}
	if !d.Status.IsTerminal() {
		t.Error("refund_completed should be terminal")
	}
}

func TestBuildDossierMachine_SubmitWithoutCharte(t *testing.T) {
	d := newDossier(domainwf.StatusPendingUpload)

	m := BuildDossierMachine(d, TransitionPayload{}, fullTracker())
	err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusPendingAdminValidation)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestBuildDossierMachine_SubmitWithMissingDocuments(t *testing.T) {
	d := newDossier(domainwf.StatusPendingUpload)
	d.CharteSigned = true

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusPendingAdminValidation)

	var reqErr *domainwf.RequirementsError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Fire() error = %v, want *RequirementsError", err)
	}
	if !errors.Is(err, domainwf.ErrIncompleteRequirements) {
		t.Error("requirements error should unwrap to ErrIncompleteRequirements")
	}
	if reqErr.Phase != string(document.PhasePreEligibility) {
		t.Errorf("Phase = %s, want %s", reqErr.Phase, document.PhasePreEligibility)
	}
	if len(reqErr.Missing) != 4 {
		t.Errorf("Missing = %v, want 4 labels", reqErr.Missing)
	}
}

func TestBuildDossierMachine_ProposeExpert(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *entity.Dossier)
		payload TransitionPayload
		wantErr bool
	}{
		{
			name:    "ok",
			mutate:  func(d *entity.Dossier) {},
			payload: TransitionPayload{ExpertID: "e1"},
		},
		{
			name:    "missing expert id",
			mutate:  func(d *entity.Dossier) {},
			payload: TransitionPayload{},
			wantErr: true,
		},
		{
			name:    "proposal already in flight",
			mutate:  func(d *entity.Dossier) { d.ExpertPendingID = strPtr("e2") },
			payload: TransitionPayload{ExpertID: "e1"},
			wantErr: true,
		},
		{
			name:    "expert already assigned",
			mutate:  func(d *entity.Dossier) { d.ExpertID = strPtr("e2") },
			payload: TransitionPayload{ExpertID: "e1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDossier(domainwf.StatusAdminValidated)
			tt.mutate(d)

			m := BuildDossierMachine(d, tt.payload, emptyTracker())
			err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusExpertPendingValidation)
			if tt.wantErr {
				if !errors.Is(err, domainwf.ErrInvalidTransition) {
					t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
				}
			} else if err != nil {
				t.Errorf("Fire() failed: %v", err)
			}
		})
	}
}

func TestBuildDossierMachine_AcceptWithoutPending(t *testing.T) {
	d := newDossier(domainwf.StatusExpertPendingValidation)

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleExpert, domainwf.StatusExpertValidated)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestBuildDossierMachine_RequestDocumentsRequiresSlots(t *testing.T) {
	d := newDossier(domainwf.StatusExpertValidated)
	d.ExpertID = strPtr("e1")

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleExpert, domainwf.StatusComplementaryDocsPending)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestBuildDossierMachine_SendDocumentsGuarded(t *testing.T) {
	d := newDossier(domainwf.StatusComplementaryDocsPending)
	d.Metadata.RequiredDocumentsExpert = []entity.RequestedDocument{
		{ID: "r1", Description: "Balance sheet", Required: true, Uploaded: false},
	}

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusComplementaryDocsSent)

	var reqErr *domainwf.RequirementsError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Fire() error = %v, want *RequirementsError", err)
	}
	if reqErr.Phase != string(document.PhaseExpertRequested) {
		t.Errorf("Phase = %s, want %s", reqErr.Phase, document.PhaseExpertRequested)
	}

	d.Metadata.RequiredDocumentsExpert[0].Uploaded = true
	m = BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	if err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusComplementaryDocsSent); err != nil {
		t.Errorf("Fire() failed after upload: %v", err)
	}
}

func TestBuildDossierMachine_CompleteAuditRequiresOutcome(t *testing.T) {
	tests := []struct {
		name    string
		payload TransitionPayload
		wantErr bool
	}{
		{"missing both", TransitionPayload{}, true},
		{"missing summary", TransitionPayload{MontantFinal: floatPtr(1000)}, true},
		{"missing amount", TransitionPayload{AuditSummary: "done"}, true},
		{"complete", TransitionPayload{MontantFinal: floatPtr(1000), AuditSummary: "done"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDossier(domainwf.StatusAuditInProgress)
			m := BuildDossierMachine(d, tt.payload, emptyTracker())
			err := m.Fire(context.Background(), domainwf.RoleExpert, domainwf.StatusAuditCompleted)
			if tt.wantErr {
				if !errors.Is(err, domainwf.ErrInvalidTransition) {
					t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
				}
			} else if err != nil {
				t.Errorf("Fire() failed: %v", err)
			}
		})
	}
}

func TestBuildDossierMachine_RecordPaymentRequiresMode(t *testing.T) {
	d := newDossier(domainwf.StatusPaymentRequested)

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleAdmin, domainwf.StatusPaymentInProgress)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestBuildDossierMachine_TerminalStatuses(t *testing.T) {
	for _, status := range []domainwf.Status{domainwf.StatusAdminRejected, domainwf.StatusRefundCompleted} {
		t.Run(string(status), func(t *testing.T) {
			d := newDossier(status)
			m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
			for _, role := range []domainwf.Role{domainwf.RoleClient, domainwf.RoleExpert, domainwf.RoleAdmin} {
				if targets := m.PermittedTargets(role); targets != nil {
					t.Errorf("PermittedTargets(%s) = %v, want nil", role, targets)
				}
			}
			err := m.Fire(context.Background(), domainwf.RoleAdmin, domainwf.StatusValidated)
			if !errors.Is(err, domainwf.ErrInvalidTransition) {
				t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestBuildDossierMachine_WrongRole(t *testing.T) {
	d := newDossier(domainwf.StatusPendingAdminValidation)

	m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
	err := m.Fire(context.Background(), domainwf.RoleClient, domainwf.StatusAdminValidated)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestBuildDossierMachine_ValidatedAcceptsAdminAndExpert(t *testing.T) {
	for _, role := range []domainwf.Role{domainwf.RoleAdmin, domainwf.RoleExpert} {
		t.Run(role.String(), func(t *testing.T) {
			d := newDossier(domainwf.StatusValidated)
			m := BuildDossierMachine(d, TransitionPayload{}, emptyTracker())
			if err := m.Fire(context.Background(), role, domainwf.StatusImplementationInProgress); err != nil {
				t.Errorf("Fire(%s) failed: %v", role, err)
			}
		})
	}
}
