package catalogmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"
)

// Catalog is the in-memory resource catalog used in tests and no-db mode.
type Catalog struct {
	mu        sync.Mutex
	resources map[uint64]domain.Resource
}

func New() *Catalog {
	return &Catalog{resources: make(map[uint64]domain.Resource)}
}

func (c *Catalog) Register(_ context.Context, res domain.Resource) error {
	if res.ID == 0 {
		return fmt.Errorf("%w: resource id is required", domain.ErrValidation)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.resources[res.ID]; exists {
		return fmt.Errorf("%w: resource %d already registered", domain.ErrReplay, res.ID)
	}
	c.resources[res.ID] = res
	return nil
}

func (c *Catalog) GetByID(_ context.Context, id uint64) (*domain.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.resources[id]
	if !ok {
		return nil, fmt.Errorf("%w: resource %d", domain.ErrNotFound, id)
	}
	out := res
	return &out, nil
}

func (c *Catalog) GetByIDs(_ context.Context, ids []uint64) ([]domain.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Resource, 0, len(ids))
	for _, id := range ids {
		if res, ok := c.resources[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

// Deactivate flips the active flag; records are never deleted.
func (c *Catalog) Deactivate(_ context.Context, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.resources[id]
	if !ok {
		return fmt.Errorf("%w: resource %d", domain.ErrNotFound, id)
	}
	res.Active = false
	c.resources[id] = res
	return nil
}

var _ usecase.ResourceCatalog = (*Catalog)(nil)
