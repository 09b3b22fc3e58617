package domain

import "github.com/shopspring/decimal"

// Attestation is the authority's signature over the canonical encoding of an
// ordered resource-id sequence. Stateless; recomputed on demand.
type Attestation struct {
	ResourceIDs []uint64
	TotalCost   decimal.Decimal
	Signature   []byte
	Signer      string
}
