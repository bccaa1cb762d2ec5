package authz

import "github.com/investbank/deal-pipeline/internal/core/domain"

// RedactDeal applies a Decision's redaction to a deal in place. The value is
// removed structurally (nil pointer, omitted on the wire) so a caller cannot
// distinguish "hidden" from "never set". Idempotent: redacting twice equals
// redacting once.
//
// Every code path that returns a deal representation must go through this
// one function; duplicating the rule at call sites is how leaks happen.
func RedactDeal(d *domain.Deal, dec Decision) *domain.Deal {
	if d == nil || !dec.RedactValue {
		return d
	}
	d.DealValue = nil
	return d
}

// RedactDeals applies RedactDeal to every element of a listing.
func RedactDeals(deals []*domain.Deal, dec Decision) []*domain.Deal {
	for _, d := range deals {
		RedactDeal(d, dec)
	}
	return deals
}
