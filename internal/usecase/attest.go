package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	cryptoinfra "github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/crypto"

	"github.com/shopspring/decimal"
)

// AttestationService canonicalizes a resource-id set, derives its price from
// the catalog and signs it on behalf of the authority.
type AttestationService struct {
	signer  *cryptoinfra.AttestationSigner
	catalog ResourceCatalog
	audit   AuditSink
}

func NewAttestationService(signer *cryptoinfra.AttestationSigner, catalog ResourceCatalog, audit AuditSink) *AttestationService {
	return &AttestationService{signer: signer, catalog: catalog, audit: audit}
}

func (s *AttestationService) Attest(ctx context.Context, ids []uint64) (*domain.Attestation, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: resource id set is empty", domain.ErrValidation)
	}
	resources, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]domain.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}
	total := decimal.Zero
	for _, id := range ids {
		res, ok := byID[id]
		if !ok || !res.Active {
			return nil, fmt.Errorf("%w: resource id %d unknown", domain.ErrNotFound, id)
		}
		total = total.Add(res.Price)
	}

	sig, err := s.signer.Sign(ids)
	if err != nil {
		return nil, err
	}
	s.appendAudit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventAttestationIssued,
		Outcome:   "issued",
		Payload: map[string]any{
			"resource_ids": ids,
			"total_cost":   total.String(),
		},
	})
	return &domain.Attestation{
		ResourceIDs: ids,
		TotalCost:   total,
		Signature:   sig,
		Signer:      s.signer.Address().Hex(),
	}, nil
}

func (s *AttestationService) appendAudit(ctx context.Context, event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, event); err != nil {
		log.Printf("audit append failed: %v", err)
	}
}
