package ledgermem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"
)

// Ledger is the in-memory reference ledger used in tests and no-db mode. All
// transitions happen under one mutex, so Complete is a true compare-and-set.
type Ledger struct {
	mu   sync.Mutex
	refs map[string]domain.PaymentReference
}

func New() *Ledger {
	return &Ledger{refs: make(map[string]domain.PaymentReference)}
}

func (l *Ledger) Create(_ context.Context, ref domain.PaymentReference) (string, error) {
	id, err := domain.NewReferenceID()
	if err != nil {
		return "", fmt.Errorf("%w: generate reference id: %v", domain.ErrStorage, err)
	}
	ref.ReferenceID = id
	if ref.Status == "" {
		ref.Status = domain.PaymentPending
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.refs[id] = ref
	return id, nil
}

func (l *Ledger) Lookup(_ context.Context, referenceID string) (*domain.PaymentReference, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ref, ok := l.refs[referenceID]
	if !ok {
		return nil, fmt.Errorf("%w: reference %s", domain.ErrNotFound, referenceID)
	}
	out := ref
	return &out, nil
}

func (l *Ledger) Complete(_ context.Context, referenceID string, status domain.PaymentStatus, txID string) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: status %s is not terminal", domain.ErrValidation, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	ref, ok := l.refs[referenceID]
	if !ok {
		return fmt.Errorf("%w: reference %s", domain.ErrNotFound, referenceID)
	}
	if ref.Status != domain.PaymentPending {
		return fmt.Errorf("%w: reference %s is %s", domain.ErrReplay, referenceID, ref.Status)
	}
	ref.Status = status
	ref.ConfirmedTxID = txID
	ref.UpdatedAt = time.Now().UTC()
	l.refs[referenceID] = ref
	return nil
}

var _ usecase.ReferenceLedger = (*Ledger)(nil)
