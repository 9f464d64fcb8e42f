package domain

import (
	"errors"
	"fmt"
)

// Invariant names reported inside ConstraintError. Callers match on these,
// so they are part of the API surface.
const (
	InvariantAlreadyAssigned     = "ALREADY_ASSIGNED"
	InvariantUnitOccupied        = "UNIT_OCCUPIED"
	InvariantDuplicateUnitNumber = "DUPLICATE_UNIT_NUMBER"
	InvariantDuplicateEmail      = "DUPLICATE_EMAIL"
	InvariantDuplicateUsername   = "DUPLICATE_USERNAME"
	InvariantTenantNotInUnit     = "TENANT_NOT_IN_UNIT"
	InvariantUnitNotOccupied     = "UNIT_NOT_OCCUPIED"
	InvariantNotCaretaker        = "NOT_A_CARETAKER"
	InvariantNotTenant           = "NOT_A_TENANT"
	InvariantInvalidStatus       = "INVALID_STATUS"
	InvariantInvalidPeriod       = "INVALID_PERIOD"
)

// ErrConflict is returned when a transactional write loses a race against a
// concurrent request. The request layer retries a small fixed number of times
// before surfacing it.
var ErrConflict = errors.New("conflicting concurrent update")

// ConstraintError reports a named invariant breach. Constraint violations are
// never retried; the invariant name tells the caller exactly what was refused.
type ConstraintError struct {
	Invariant string
	Detail    string
}

func (e *ConstraintError) Error() string {
	if e.Detail == "" {
		return "constraint violated: " + e.Invariant
	}
	return fmt.Sprintf("constraint violated: %s: %s", e.Invariant, e.Detail)
}

func Constraint(invariant, detail string) *ConstraintError {
	return &ConstraintError{Invariant: invariant, Detail: detail}
}

// AsConstraint unwraps err into a ConstraintError if it is one.
func AsConstraint(err error) (*ConstraintError, bool) {
	var ce *ConstraintError
	ok := errors.As(err, &ce)
	return ce, ok
}
