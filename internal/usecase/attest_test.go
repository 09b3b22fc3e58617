package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/catalogmem"
	cryptoinfra "github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/crypto"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

func newAttestFixture(t *testing.T) (*usecase.AttestationService, *cryptoinfra.AttestationSigner, *catalogmem.Catalog) {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := cryptoinfra.NewAttestationSignerFromKey(key)
	catalog := catalogmem.New()
	return usecase.NewAttestationService(signer, catalog, nil), signer, catalog
}

func registerResource(t *testing.T, catalog *catalogmem.Catalog, id uint64, price string, active bool) {
	t.Helper()
	err := catalog.Register(context.Background(), domain.Resource{
		ID:     id,
		Owner:  "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Price:  decimal.RequireFromString(price),
		Active: active,
	})
	if err != nil {
		t.Fatalf("register resource %d: %v", id, err)
	}
}

func TestAttestUnknownResources(t *testing.T) {
	svc, _, _ := newAttestFixture(t)
	if _, err := svc.Attest(context.Background(), []uint64{12, 45, 99}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttestEmptySet(t *testing.T) {
	svc, _, _ := newAttestFixture(t)
	if _, err := svc.Attest(context.Background(), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAttestDuplicateIDs(t *testing.T) {
	svc, _, catalog := newAttestFixture(t)
	registerResource(t, catalog, 12, "1.50", true)
	if _, err := svc.Attest(context.Background(), []uint64{12, 12}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAttestInactiveResource(t *testing.T) {
	svc, _, catalog := newAttestFixture(t)
	registerResource(t, catalog, 12, "1.50", true)
	registerResource(t, catalog, 45, "2.00", false)
	if _, err := svc.Attest(context.Background(), []uint64{12, 45}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive resource, got %v", err)
	}
}

func TestAttestSignsAndPrices(t *testing.T) {
	svc, signer, catalog := newAttestFixture(t)
	registerResource(t, catalog, 12, "1.50", true)
	registerResource(t, catalog, 45, "2.25", true)
	registerResource(t, catalog, 99, "0.75", true)

	ids := []uint64{12, 45, 99}
	att, err := svc.Attest(context.Background(), ids)
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	if !att.TotalCost.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("total cost = %s, want 4.5", att.TotalCost)
	}
	if att.Signer != signer.Address().Hex() {
		t.Fatalf("attestation signer %s, want %s", att.Signer, signer.Address().Hex())
	}

	// The signature must recover to the authority over the canonical message.
	message, err := cryptoinfra.CanonicalHash(ids)
	if err != nil {
		t.Fatalf("canonical hash: %v", err)
	}
	recovered, err := cryptoinfra.RecoverAddress(message, att.Signature)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != signer.Address() {
		t.Fatalf("recovered %s, want %s", recovered.Hex(), signer.Address().Hex())
	}

	// Same set, same order, same signature.
	again, err := svc.Attest(context.Background(), ids)
	if err != nil {
		t.Fatalf("second attest: %v", err)
	}
	if string(again.Signature) != string(att.Signature) {
		t.Fatal("expected deterministic signatures for identical input")
	}
}
