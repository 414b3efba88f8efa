// Package authz implements the hierarchical authorization engine:
// membership resolution, the role permission matrix, the request access
// evaluator, and the invariant guards for singleton roles (organization
// owner, team leader, project manager).
package authz

import (
	"errors"
	"fmt"
)

// Kind classifies an authorization denial
type Kind int

const (
	// KindNotAMember - the principal has no membership row at the required scope
	KindNotAMember Kind = iota
	// KindBanned - a membership row exists but its status is banned
	KindBanned
	// KindEntityNotFound - a referenced team/project does not exist
	KindEntityNotFound
	// KindMalformedReference - an entity id was present but empty or unparseable
	KindMalformedReference
	// KindInsufficientPermission - hierarchy checks passed but the role lacks a required permission
	KindInsufficientPermission
	// KindInvariantViolation - a mutation would violate a singleton-role invariant
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindNotAMember:
		return "not_a_member"
	case KindBanned:
		return "banned"
	case KindEntityNotFound:
		return "entity_not_found"
	case KindMalformedReference:
		return "malformed_reference"
	case KindInsufficientPermission:
		return "insufficient_permission"
	case KindInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is a denied authorization decision. Every Error is a "forbidden"
// outcome for the caller; store failures are returned as plain errors and
// must never be interpreted as a decision.
type Error struct {
	Kind   Kind
	Scope  string // organization, team, project
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func deny(kind Kind, scope, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   kind,
		Scope:  scope,
		Reason: fmt.Sprintf(format, args...),
	}
}

// AsError unwraps an authorization denial from err, if it is one
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
