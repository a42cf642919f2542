package engine

import (
	"errors"
	"fmt"
)

// ErrConcurrencyConflict is returned when two completion calls race on the
// same cycle-credit check. With a single caller it never fires, but the
// contract holds regardless.
var ErrConcurrencyConflict = errors.New("conflicting completion in progress")

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string // "mission", "skill", "reward", "capsule"
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// InvalidInputError reports out-of-range or malformed user input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateViolationError reports an operation that the current state forbids,
// e.g. completing an archived mission or redeeming beyond the coin balance.
type StateViolationError struct {
	Op     string
	Reason string
}

func (e StateViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func errInvalidDifficulty(d Difficulty) error {
	return InvalidInputError{Field: "difficulty", Reason: fmt.Sprintf("%d is outside [1,5]", d)}
}

func errInvalidLevel(level int) error {
	return InvalidInputError{Field: "level", Reason: fmt.Sprintf("%d is below 1", level)}
}
