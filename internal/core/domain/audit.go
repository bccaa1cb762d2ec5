package domain

import "time"

// Audit outcomes.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
	AuditOutcomeFailure = "failure"
)

// AuditEvent records a security-relevant occurrence: login attempts, token
// rejections, authorization denials. Written asynchronously; never part of
// the request/response contract.
type AuditEvent struct {
	Subject   string    `json:"subject" bson:"subject"`
	Action    string    `json:"action" bson:"action"`
	Outcome   string    `json:"outcome" bson:"outcome"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty" bson:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
