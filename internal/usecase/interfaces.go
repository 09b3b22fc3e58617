package usecase

import (
	"context"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
)

// ReferenceLedger tracks one record per pending payment intent. Complete must
// be a compare-and-set: it succeeds at most once per reference.
type ReferenceLedger interface {
	Create(ctx context.Context, ref domain.PaymentReference) (string, error)
	Lookup(ctx context.Context, referenceID string) (*domain.PaymentReference, error)
	Complete(ctx context.Context, referenceID string, status domain.PaymentStatus, txID string) error
}

// ResourceCatalog is the read/registration surface over the storage
// subsystem's resource records.
type ResourceCatalog interface {
	Register(ctx context.Context, res domain.Resource) error
	GetByID(ctx context.Context, id uint64) (*domain.Resource, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]domain.Resource, error)
}

// SettlementAuthority is the external system of record for whether a payment
// actually occurred.
type SettlementAuthority interface {
	GetTransaction(ctx context.Context, txID string) (*domain.SettlementTransaction, error)
}

// AuditSink appends reconciliation events. Append failures must not fail the
// calling operation.
type AuditSink interface {
	Append(ctx context.Context, event domain.AuditEvent) error
}

// PolicyGate evaluates a payment-initiation request against the configured
// policy bundle.
type PolicyGate interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyDecision, error)
}
