package settlement

import (
	"context"
	"fmt"
	"sync"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
)

// Mock is an in-memory settlement authority for tests.
type Mock struct {
	mu  sync.Mutex
	txs map[string]domain.SettlementTransaction
	err error
}

func NewMock() *Mock {
	return &Mock{txs: make(map[string]domain.SettlementTransaction)}
}

func (m *Mock) Put(tx domain.SettlementTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tx.ID] = tx
}

// Fail makes every subsequent GetTransaction return err until reset with nil.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mock) GetTransaction(_ context.Context, txID string) (*domain.SettlementTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	tx, ok := m.txs[txID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s unknown to settlement authority", domain.ErrNotFound, txID)
	}
	out := tx
	return &out, nil
}
