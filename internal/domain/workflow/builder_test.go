package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestBuilder_Configure(t *testing.T) {
	b := NewBuilder()

	config := b.Configure(StatusPendingUpload)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	// Configuring the same status again returns the same config
	config2 := b.Configure(StatusPendingUpload)
	if config != config2 {
		t.Error("Configure() should return same config for same status")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidStatus(t *testing.T) {
	b := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid status")
		}
	}()

	b.Configure(Status("bogus"))
}

func TestBuilder_BuildPanicsOnInvalidInitialStatus(t *testing.T) {
	b := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial status")
		}
	}()

	b.Build(Status("bogus"))
}

func TestBuilder_PermitPanicsOnTerminalSource(t *testing.T) {
	b := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when the source status is terminal")
		}
	}()

	b.Configure(StatusRefundCompleted).Permit(RoleAdmin, StatusPendingUpload)
}

func TestMachine_Fire(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		Permit(RoleClient, StatusPendingAdminValidation)

	m := b.Build(StatusPendingUpload)

	if !m.CanFire(RoleClient, StatusPendingAdminValidation) {
		t.Error("CanFire() should return true for a permitted edge")
	}

	if err := m.Fire(context.Background(), RoleClient, StatusPendingAdminValidation); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if m.Status() != StatusPendingAdminValidation {
		t.Errorf("Status after Fire() = %v, want %v", m.Status(), StatusPendingAdminValidation)
	}
}

func TestMachine_Fire_WrongRole(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		Permit(RoleClient, StatusPendingAdminValidation)

	m := b.Build(StatusPendingUpload)

	err := m.Fire(context.Background(), RoleExpert, StatusPendingAdminValidation)
	if err == nil {
		t.Fatal("Fire() should fail when the edge belongs to another role")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.Status() != StatusPendingUpload {
		t.Errorf("Status should remain %v after failed Fire(), got %v", StatusPendingUpload, m.Status())
	}
}

func TestMachine_Fire_UnknownTarget(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		Permit(RoleClient, StatusPendingAdminValidation)

	m := b.Build(StatusPendingUpload)

	err := m.Fire(context.Background(), RoleClient, StatusAdminValidated)
	if err == nil {
		t.Fatal("Fire() should fail for a target with no edge")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestMachine_Fire_GuardBlocks(t *testing.T) {
	guardErr := &RequirementsError{Phase: "pre_eligibility", Missing: []string{"Payroll statements (last 3 years)"}}

	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		PermitIf(RoleClient, StatusPendingAdminValidation, func(ctx context.Context) error {
			return guardErr
		})

	m := b.Build(StatusPendingUpload)

	err := m.Fire(context.Background(), RoleClient, StatusPendingAdminValidation)
	if err == nil {
		t.Fatal("Fire() should fail when the guard blocks")
	}

	// Guard errors pass through untouched so callers see the typed error
	var reqErr *RequirementsError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Fire() error = %v, want *RequirementsError", err)
	}
	if !errors.Is(err, ErrIncompleteRequirements) {
		t.Errorf("Fire() error should unwrap to ErrIncompleteRequirements, got %v", err)
	}
	if m.Status() != StatusPendingUpload {
		t.Errorf("Status should remain %v after blocked Fire(), got %v", StatusPendingUpload, m.Status())
	}
}

func TestMachine_Fire_GuardPasses(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		PermitIf(RoleClient, StatusPendingAdminValidation, func(ctx context.Context) error {
			return nil
		})

	m := b.Build(StatusPendingUpload)

	if err := m.Fire(context.Background(), RoleClient, StatusPendingAdminValidation); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if m.Status() != StatusPendingAdminValidation {
		t.Errorf("Status after Fire() = %v, want %v", m.Status(), StatusPendingAdminValidation)
	}
}

func TestMachine_PermittedTargets(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingAdminValidation).
		Permit(RoleAdmin, StatusAdminValidated).
		Permit(RoleAdmin, StatusAdminRejected)

	m := b.Build(StatusPendingAdminValidation)

	targets := m.PermittedTargets(RoleAdmin)
	if len(targets) != 2 {
		t.Fatalf("PermittedTargets() returned %d targets, want 2", len(targets))
	}
	if targets[0] != StatusAdminValidated || targets[1] != StatusAdminRejected {
		t.Errorf("PermittedTargets() = %v, want table order [%v %v]",
			targets, StatusAdminValidated, StatusAdminRejected)
	}

	if got := m.PermittedTargets(RoleClient); got != nil {
		t.Errorf("PermittedTargets() for role without edges = %v, want nil", got)
	}
}

func TestMachine_NoEdgesFromUnconfiguredStatus(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		Permit(RoleClient, StatusPendingAdminValidation)

	m := b.Build(StatusRefundCompleted)

	err := m.Fire(context.Background(), RoleAdmin, StatusPendingUpload)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() from unconfigured status error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.PermittedTargets(RoleAdmin) != nil {
		t.Error("PermittedTargets() from unconfigured status should be nil")
	}
}

func TestBuilder_BuildIsolatesLaterConfiguration(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatusPendingUpload).
		Permit(RoleClient, StatusPendingAdminValidation)

	m1 := b.Build(StatusPendingUpload)

	// Edges added after Build must not leak into the existing machine
	b.Configure(StatusPendingUpload).
		Permit(RoleAdmin, StatusAdminRejected)

	if m1.CanFire(RoleAdmin, StatusAdminRejected) {
		t.Error("machine built before Configure() should not see the new edge")
	}

	m2 := b.Build(StatusPendingUpload)
	if !m2.CanFire(RoleAdmin, StatusAdminRejected) {
		t.Error("machine built after Configure() should see the new edge")
	}
}
