package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func newTestSigner(t *testing.T) *AttestationSigner {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return NewAttestationSignerFromKey(key)
}

func TestSignDeterministic(t *testing.T) {
	signer := newTestSigner(t)
	ids := []uint64{12, 45, 99}

	first, err := signer.Sign(ids)
	if err != nil {
		t.Fatalf("sign first: %v", err)
	}
	second, err := signer.Sign(ids)
	if err != nil {
		t.Fatalf("sign second: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected byte-identical signatures for identical ordered sequences")
	}
	if len(first) != 65 {
		t.Fatalf("expected 65-byte signature, got %d", len(first))
	}
	if v := first[64]; v != 27 && v != 28 {
		t.Fatalf("expected recovery id 27 or 28, got %d", v)
	}
}

// Ordering is part of the contract with the on-chain verifier: the same set
// presented in a different order hashes (and therefore signs) differently.
func TestSignOrderSensitive(t *testing.T) {
	signer := newTestSigner(t)

	sigA, err := signer.Sign([]uint64{1, 2, 3})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sigB, err := signer.Sign([]uint64{3, 2, 1})
	if err != nil {
		t.Fatalf("sign permuted: %v", err)
	}
	if bytes.Equal(sigA, sigB) {
		t.Fatal("expected differing signatures for differing orderings")
	}

	hashA, _ := CanonicalHash([]uint64{1, 2, 3})
	hashB, _ := CanonicalHash([]uint64{3, 2, 1})
	if bytes.Equal(hashA, hashB) {
		t.Fatal("expected differing canonical hashes for differing orderings")
	}
}

func TestSignRejectsInvalidSets(t *testing.T) {
	signer := newTestSigner(t)

	if _, err := signer.Sign(nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty set: expected ErrValidation, got %v", err)
	}
	if _, err := signer.Sign([]uint64{7, 7}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("duplicate set: expected ErrValidation, got %v", err)
	}
}

func TestSignRecoverRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	ids := []uint64{12, 45, 99}

	sig, err := signer.Sign(ids)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	hash, err := CanonicalHash(ids)
	if err != nil {
		t.Fatalf("canonical hash: %v", err)
	}
	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != signer.Address() {
		t.Fatalf("recovered %s, want %s", recovered.Hex(), signer.Address().Hex())
	}
}

func TestRecoverAddressRejectsCorruptSignature(t *testing.T) {
	signer := newTestSigner(t)
	message := []byte("hello")

	sig, err := ethcrypto.Sign(PersonalDigest(message), signer.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[64] += 27

	recovered, err := RecoverAddress(message, sig)
	if err != nil {
		t.Fatalf("recover pristine: %v", err)
	}
	if recovered != signer.Address() {
		t.Fatalf("recovered %s, want %s", recovered.Hex(), signer.Address().Hex())
	}

	for i := 0; i < 64; i++ {
		corrupt := make([]byte, len(sig))
		copy(corrupt, sig)
		corrupt[i] ^= 0x01
		addr, err := RecoverAddress(message, corrupt)
		if err == nil && addr == signer.Address() {
			t.Fatalf("flipped byte %d still recovered the signer address", i)
		}
	}

	if _, err := RecoverAddress(message, sig[:64]); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("short signature: expected ErrInvalidSignature, got %v", err)
	}
}

func TestNewAttestationSignerConfiguration(t *testing.T) {
	if _, err := NewAttestationSigner(""); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("missing key: expected ErrConfiguration, got %v", err)
	}
	if _, err := NewAttestationSigner("not-hex"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("bad key: expected ErrConfiguration, got %v", err)
	}

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hexKey := "0x" + hex.EncodeToString(ethcrypto.FromECDSA(key))
	signer, err := NewAttestationSigner(hexKey)
	if err != nil {
		t.Fatalf("new signer from hex: %v", err)
	}
	if signer.Address() != ethcrypto.PubkeyToAddress(key.PublicKey) {
		t.Fatal("signer address does not match key")
	}
}
