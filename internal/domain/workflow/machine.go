package workflow

import "context"

// Machine validates role-scoped transitions over the dossier status enum
type Machine interface {
	// Status returns the current status
	Status() Status

	// CanFire returns true if the role may request a transition to target
	// from the current status (guards are not evaluated)
	CanFire(role Role, target Status) bool

	// Fire attempts the transition, evaluating the edge's guard.
	// On success the machine advances to target.
	Fire(ctx context.Context, role Role, target Status) error

	// PermittedTargets returns every status the role may transition to
	// from the current status, in table order
	PermittedTargets(role Role) []Status
}
