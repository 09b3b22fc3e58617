package crypto

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AttestationSigner holds the authority's long-lived secp256k1 key. The key is
// loaded once at startup and is read-only afterwards; it is never logged or
// serialized.
type AttestationSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewAttestationSigner(privateKeyHex string) (*AttestationSigner, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: attestation signing key is required", domain.ErrConfiguration)
	}
	key, err := ethcrypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: parse attestation signing key: %v", domain.ErrConfiguration, err)
	}
	return NewAttestationSignerFromKey(key), nil
}

func NewAttestationSignerFromKey(key *ecdsa.PrivateKey) *AttestationSigner {
	return &AttestationSigner{
		key:     key,
		address: ethcrypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the authority address an on-chain verifier recovers from any
// attestation signature.
func (s *AttestationSigner) Address() common.Address {
	return s.address
}

// Sign produces a 65-byte personal-sign signature over the canonical hash of
// the id sequence. Signing is deterministic: identical ordered sequences yield
// byte-identical signatures.
func (s *AttestationSigner) Sign(ids []uint64) ([]byte, error) {
	hash, err := CanonicalHash(ids)
	if err != nil {
		return nil, err
	}
	sig, err := ethcrypto.Sign(PersonalDigest(hash), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign attestation: %w", err)
	}
	// Solidity ecrecover expects v in {27, 28}.
	sig[64] += 27
	return sig, nil
}

// CanonicalHash encodes each id as a 32-byte big-endian word, concatenates the
// words in presented order and keccak256-hashes the result. The ordering is
// part of the contract with the on-chain verifier; it is NOT normalized here.
func CanonicalHash(ids []uint64) ([]byte, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: resource id set is empty", domain.ErrValidation)
	}
	seen := make(map[uint64]struct{}, len(ids))
	buf := make([]byte, 0, len(ids)*32)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate resource id %d", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}
		var word [32]byte
		binary.BigEndian.PutUint64(word[24:], id)
		buf = append(buf, word[:]...)
	}
	return ethcrypto.Keccak256(buf), nil
}

// PersonalDigest applies the Ethereum signed-message prefix so the signature
// cannot be replayed as an authorization for an unrelated protocol.
func PersonalDigest(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return ethcrypto.Keccak256(append([]byte(prefix), message...))
}

// RecoverAddress recovers the signer address of a 65-byte personal-sign
// signature over the given message bytes.
func RecoverAddress(message, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, fmt.Errorf("%w: signature must be 65 bytes, got %d", domain.ErrInvalidSignature, len(signature))
	}
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(PersonalDigest(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: recover public key: %v", domain.ErrInvalidSignature, err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
