package domain

import "time"

type AuditEventType string

const (
	AuditEventPaymentInitiated   AuditEventType = "payment_initiated"
	AuditEventPaymentConfirmed   AuditEventType = "payment_confirmed"
	AuditEventPaymentFailed      AuditEventType = "payment_failed"
	AuditEventTokenIssued        AuditEventType = "token_issued"
	AuditEventTokenRejected      AuditEventType = "token_rejected"
	AuditEventResourceRegistered AuditEventType = "resource_registered"
	AuditEventAttestationIssued  AuditEventType = "attestation_issued"
)

// AuditEvent is an append-only record for post-hoc reconciliation. Events are
// never updated or deleted.
type AuditEvent struct {
	ID          string
	EventType   AuditEventType
	ReferenceID string
	TxID        string
	Outcome     string
	Payload     map[string]any
	CreatedAt   time.Time
}
