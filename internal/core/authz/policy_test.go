package authz

import (
	"errors"
	"testing"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

func userPrincipal(id string) *domain.Principal {
	return &domain.Principal{UserID: id, Username: "u-" + id, Roles: []domain.Role{domain.RoleUser}}
}

func adminPrincipal(id string) *domain.Principal {
	return &domain.Principal{UserID: id, Username: "a-" + id, Roles: []domain.Role{domain.RoleAdmin}}
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		setsValue bool
		allow     bool
	}{
		{"user without value", userPrincipal("u1"), false, true},
		{"user with value", userPrincipal("u1"), true, false},
		{"admin with value", adminPrincipal("a1"), true, true},
		{"admin without value", adminPrincipal("a1"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := CanCreate(tt.principal, tt.setsValue)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dec.Allow != tt.allow {
				t.Fatalf("expected allow=%v, got %+v", tt.allow, dec)
			}
			if !dec.Allow && dec.Reason == "" {
				t.Fatalf("denial must carry a reason")
			}
		})
	}
}

func TestCanCreate_NilPrincipal(t *testing.T) {
	if _, err := CanCreate(nil, false); !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestCanRead(t *testing.T) {
	owner := userPrincipal("u1")

	dec, err := CanRead(owner, "u1")
	if err != nil || !dec.Allow {
		t.Fatalf("owner read should be allowed: %+v %v", dec, err)
	}
	if !dec.RedactValue {
		t.Fatalf("non-admin read must redact the value even on own deals")
	}

	dec, err = CanRead(owner, "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allow {
		t.Fatalf("non-owner read must be denied")
	}

	dec, err = CanRead(adminPrincipal("a1"), "u2")
	if err != nil || !dec.Allow {
		t.Fatalf("admin read should be allowed: %+v %v", dec, err)
	}
	if dec.RedactValue {
		t.Fatalf("admin read must not redact")
	}
}

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		name         string
		principal    *domain.Principal
		owner        string
		touchesValue bool
		allow        bool
	}{
		{"owner plain update", userPrincipal("u1"), "u1", false, true},
		{"owner touching value", userPrincipal("u1"), "u1", true, false},
		{"non-owner update", userPrincipal("u1"), "u2", false, false},
		{"admin any deal with value", adminPrincipal("a1"), "u2", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := CanUpdate(tt.principal, tt.owner, tt.touchesValue)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dec.Allow != tt.allow {
				t.Fatalf("expected allow=%v, got %+v", tt.allow, dec)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	// Ownership is irrelevant for delete: even the owner is denied.
	dec, err := CanDelete(userPrincipal("u1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allow {
		t.Fatalf("non-admin delete must be denied")
	}

	dec, err = CanDelete(adminPrincipal("a1"))
	if err != nil || !dec.Allow {
		t.Fatalf("admin delete should be allowed: %+v %v", dec, err)
	}
}

func TestCanAnnotate(t *testing.T) {
	dec, _ := CanAnnotate(userPrincipal("u1"), "u1")
	if !dec.Allow {
		t.Fatalf("owner should be allowed to annotate")
	}
	dec, _ = CanAnnotate(userPrincipal("u1"), "u2")
	if dec.Allow {
		t.Fatalf("non-owner annotate must be denied")
	}
	dec, _ = CanAnnotate(adminPrincipal("a1"), "u2")
	if !dec.Allow {
		t.Fatalf("admin should be allowed to annotate any deal")
	}
}

func TestCanSetValue(t *testing.T) {
	dec, err := CanSetValue(userPrincipal("u1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allow {
		t.Fatalf("non-admin must not set the restricted value")
	}

	dec, err = CanSetValue(adminPrincipal("a1"))
	if err != nil || !dec.Allow {
		t.Fatalf("admin should be allowed: %+v %v", dec, err)
	}

	if _, err := CanSetValue(nil); !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestListScope(t *testing.T) {
	if got := ListScope(adminPrincipal("a1")); got != "" {
		t.Fatalf("admin listing must be unscoped, got %q", got)
	}
	if got := ListScope(userPrincipal("u1")); got != "u1" {
		t.Fatalf("user listing must be scoped to own id, got %q", got)
	}
}

func TestRedactDeal(t *testing.T) {
	value := 5_000_000.0
	deal := &domain.Deal{ID: "d1", DealValue: &value}

	RedactDeal(deal, Decision{Allow: true})
	if deal.DealValue == nil {
		t.Fatalf("decision without redaction must not touch the value")
	}

	RedactDeal(deal, Decision{Allow: true, RedactValue: true})
	if deal.DealValue != nil {
		t.Fatalf("value should have been removed")
	}

	// Idempotent: redacting an already-redacted deal is a no-op.
	RedactDeal(deal, Decision{Allow: true, RedactValue: true})
	if deal.DealValue != nil {
		t.Fatalf("second redaction changed the result")
	}

	if RedactDeal(nil, Decision{RedactValue: true}) != nil {
		t.Fatalf("nil deal should pass through")
	}
}
