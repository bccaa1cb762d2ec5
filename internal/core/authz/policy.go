// Package authz is the single decision point for every deal operation.
// All checks are pure functions of (principal, ownership, requested fields):
// no state, no I/O, no ordering concerns under concurrency.
//
// Expected denials come back as a Decision with Allow=false; an error is
// returned only for programming mistakes (a nil principal where one is
// structurally required), which the transport layer surfaces as a 500, not
// a 403.
package authz

import (
	"errors"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// ErrNoPrincipal signals that a check requiring an authenticated principal
// was invoked without one. Routes behind the auth gate can never trigger it;
// seeing it means a handler skipped the gate.
var ErrNoPrincipal = errors.New("authorization check requires a principal")

// Stable, non-leaking denial reason. Internal detail (which field or check
// failed) stays in logs, never in responses.
const reasonDenied = "insufficient permissions"

// Decision is the outcome of a policy check.
type Decision struct {
	Allow       bool
	Reason      string
	RedactValue bool
}

func allowed() Decision {
	return Decision{Allow: true}
}

func allowedRedacted() Decision {
	return Decision{Allow: true, RedactValue: true}
}

func denied() Decision {
	return Decision{Allow: false, Reason: reasonDenied}
}

// CanCreate decides whether p may create a deal. Setting the restricted
// deal value on creation requires ADMIN.
func CanCreate(p *domain.Principal, setsValue bool) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if setsValue && !p.IsAdmin() {
		return denied(), nil
	}
	return allowed(), nil
}

// CanRead decides whether p may read a deal owned by ownerID. Non-admin
// readers see their own deals only, and always with the value redacted.
func CanRead(p *domain.Principal, ownerID string) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if p.IsAdmin() {
		return allowed(), nil
	}
	if p.Owns(ownerID) {
		return allowedRedacted(), nil
	}
	return denied(), nil
}

// CanUpdate decides whether p may update a deal owned by ownerID.
// Ownership (or ADMIN) gates the update as a whole; touching the restricted
// value additionally requires ADMIN — ownership alone is not enough for that
// one field.
func CanUpdate(p *domain.Principal, ownerID string, touchesValue bool) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if p.IsAdmin() {
		return allowed(), nil
	}
	if !p.Owns(ownerID) || touchesValue {
		return denied(), nil
	}
	return allowedRedacted(), nil
}

// CanDelete decides whether p may delete a deal. ADMIN only, irrespective
// of ownership.
func CanDelete(p *domain.Principal) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if !p.IsAdmin() {
		return denied(), nil
	}
	return allowed(), nil
}

// CanAnnotate decides whether p may add a note to a deal owned by ownerID.
func CanAnnotate(p *domain.Principal, ownerID string) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if p.IsAdmin() {
		return allowed(), nil
	}
	if p.Owns(ownerID) {
		return allowedRedacted(), nil
	}
	return denied(), nil
}

// CanSetValue decides whether p may set the restricted deal value directly.
// This is a pure role gate, checked before the deal is even loaded.
func CanSetValue(p *domain.Principal) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNoPrincipal
	}
	if !p.IsAdmin() {
		return denied(), nil
	}
	return allowed(), nil
}

// ListScope returns the owner identifier a listing must be filtered by.
// Empty means unscoped (ADMIN). The filter is applied inside the repository
// query, never as a post-hoc pass over all records.
func ListScope(p *domain.Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.UserID
}
