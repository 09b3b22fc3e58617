package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource is a catalog entry for content accepted into storage. Owned by the
// ingestion pipeline; never mutated here except deactivation.
type Resource struct {
	ID          uint64
	Owner       string
	ContentHash string
	Labels      []string
	Price       decimal.Decimal
	Active      bool
	CreatedAt   time.Time
}
