package workflow

import (
	"errors"
	"reflect"
	"testing"
)

func TestProject_PinnedMappings(t *testing.T) {
	tests := []struct {
		status   Status
		step     int
		progress int
	}{
		{StatusPendingUpload, 2, 10},
		{StatusPendingAdminValidation, 2, 20},
		{StatusAdminRejected, 2, 20},
		{StatusAdminValidated, 3, 30},
		{StatusExpertPendingValidation, 3, 35},
		{StatusExpertValidated, 3, 40},
		{StatusComplementaryDocsPending, 3, 42},
		{StatusComplementaryDocsSent, 3, 45},
		{StatusAuditInProgress, 7, 60},
		{StatusAuditCompleted, 7, 70},
		{StatusValidated, 7, 75},
		{StatusImplementationInProgress, 8, 80},
		{StatusImplementationValidated, 8, 85},
		{StatusPaymentRequested, 9, 90},
		{StatusPaymentInProgress, 9, 95},
		{StatusRefundCompleted, 10, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p, err := Project(tt.status)
			if err != nil {
				t.Fatalf("Project() failed: %v", err)
			}
			if p.Step != tt.step {
				t.Errorf("Project().Step = %d, want %d", p.Step, tt.step)
			}
			if p.Progress != tt.progress {
				t.Errorf("Project().Progress = %d, want %d", p.Progress, tt.progress)
			}
		})
	}
}

func TestProject_UnknownStatus(t *testing.T) {
	_, err := Project(Status("bogus"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Project() error = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestProject_IsPure(t *testing.T) {
	for _, status := range All() {
		first, err := Project(status)
		if err != nil {
			t.Fatalf("Project(%s) failed: %v", status, err)
		}
		second, err := Project(status)
		if err != nil {
			t.Fatalf("Project(%s) failed on second call: %v", status, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Project(%s) is not deterministic: %+v != %+v", status, first, second)
		}
	}
}

func TestProject_StepLabelMatchesCatalog(t *testing.T) {
	p, err := Project(StatusAuditInProgress)
	if err != nil {
		t.Fatalf("Project() failed: %v", err)
	}
	if p.StepLabel != "Expert Report" {
		t.Errorf("Project().StepLabel = %q, want %q", p.StepLabel, "Expert Report")
	}
}

func TestProject_TerminalRefundIsComplete(t *testing.T) {
	p, err := Project(StatusRefundCompleted)
	if err != nil {
		t.Fatalf("Project() failed: %v", err)
	}
	if p.Step != 10 || p.Progress != 100 {
		t.Errorf("Project(refund_completed) = step %d progress %d, want step 10 progress 100",
			p.Step, p.Progress)
	}
}

func TestProject_NoticesAreCopies(t *testing.T) {
	p1, _ := Project(StatusPendingUpload)
	if len(p1.Notices) == 0 {
		t.Fatal("expected notices for pending_upload")
	}
	p1.Notices[0].Message = "mutated"

	p2, _ := Project(StatusPendingUpload)
	if p2.Notices[0].Message == "mutated" {
		t.Error("Project() notices share state between calls")
	}
}

func TestSteps_CatalogIsStable(t *testing.T) {
	steps := Steps()
	if len(steps) != 10 {
		t.Fatalf("Steps() returned %d entries, want 10", len(steps))
	}
	for i, step := range steps {
		if step.Number != i+1 {
			t.Errorf("Steps()[%d].Number = %d, want %d", i, step.Number, i+1)
		}
	}
}

func TestActions_DerivedFromTable(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingAdminValidation).
		Permit(RoleAdmin, StatusAdminValidated).
		Permit(RoleAdmin, StatusAdminRejected)

	m := b.Build(StatusPendingAdminValidation)

	adminActions := Actions(m, RoleAdmin)
	want := []Action{
		{Name: "validate_eligibility", Target: StatusAdminValidated},
		{Name: "reject_dossier", Target: StatusAdminRejected},
	}
	if !reflect.DeepEqual(adminActions, want) {
		t.Errorf("Actions() = %+v, want %+v", adminActions, want)
	}

	if got := Actions(m, RoleClient); got != nil {
		t.Errorf("Actions() for role without edges = %+v, want nil", got)
	}
}

func TestActionName_FallsBackToTarget(t *testing.T) {
	if got := ActionName(StatusPendingUpload, StatusPendingAdminValidation); got != "submit_dossier" {
		t.Errorf("ActionName() = %q, want %q", got, "submit_dossier")
	}
	if got := ActionName(StatusPendingUpload, StatusRefundCompleted); got != string(StatusRefundCompleted) {
		t.Errorf("ActionName() fallback = %q, want target status name", got)
	}
}
