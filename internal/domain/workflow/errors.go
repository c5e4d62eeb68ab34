package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition is returned when the attempted edge is not in the
	// transition table, the actor is not permitted, or the source status is terminal
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidStatus is returned when a status is not a known dossier status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrConcurrentModification is returned when a transition loses the race
	// for the per-dossier lock or the optimistic version check
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrIncompleteRequirements is returned when a guard fails because required
	// documents are missing
	ErrIncompleteRequirements = errors.New("incomplete requirements")
)

// RequirementsError reports which required document slots are unfulfilled.
// It unwraps to ErrIncompleteRequirements so callers can match with errors.Is.
type RequirementsError struct {
	Phase   string
	Missing []string
}

func (e *RequirementsError) Error() string {
	return fmt.Sprintf("%s: phase %s missing %s",
		ErrIncompleteRequirements, e.Phase, strings.Join(e.Missing, ", "))
}

func (e *RequirementsError) Unwrap() error {
	return ErrIncompleteRequirements
}
