package ports

import (
	"context"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// AuditSink receives security events for asynchronous recording. Record must
// never block the request path; implementations drop on backpressure.
type AuditSink interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// NopAuditSink discards all events. Used in tests and when auditing is off.
type NopAuditSink struct{}

func (NopAuditSink) Record(domain.AuditEvent) {}
