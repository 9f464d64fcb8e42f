// Package authz is the authorization core: it resolves an authenticated user
// into an identity context, evaluates the role/action permission table, and
// produces the row-level scopes repositories compose into queries.
//
// Denials carry one of three enumerated reasons. OUT_OF_SCOPE and
// TARGET_NOT_FOUND must surface identically to callers so that a forbidden
// target cannot be told apart from a missing one; only ROLE_NOT_PERMITTED is
// safe to reveal, since it exposes policy rather than data.
package authz

import (
	"errors"
	"fmt"
)

type DenyReason string

const (
	DenyRoleNotPermitted DenyReason = "ROLE_NOT_PERMITTED"
	DenyOutOfScope       DenyReason = "OUT_OF_SCOPE"
	DenyTargetNotFound   DenyReason = "TARGET_NOT_FOUND"
)

// Denial is a permission check failure. It implements error so services can
// return it straight through the call chain.
type Denial struct {
	Reason DenyReason
	Action Action
}

func (d *Denial) Error() string {
	if d.Action != "" {
		return fmt.Sprintf("denied: %s (%s)", d.Reason, d.Action)
	}
	return fmt.Sprintf("denied: %s", d.Reason)
}

// ReadsAsNotFound reports whether the denial must be presented as a missing
// resource. True for everything except role violations.
func (d *Denial) ReadsAsNotFound() bool {
	return d.Reason != DenyRoleNotPermitted
}

func Deny(reason DenyReason, action Action) *Denial {
	return &Denial{Reason: reason, Action: action}
}

// AsDenial unwraps err into a *Denial if one is in the chain.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
