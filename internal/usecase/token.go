package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	cryptoinfra "github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/crypto"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
)

const challengeHeader = "ImpactChain access challenge"

// clock skew tolerated on the issued-at line of a signed challenge.
const challengeSkew = time.Minute

// TokenIssuer validates wallet-signed challenges and issues short-lived,
// principal-scoped capability tokens. The issuer keeps no per-challenge state;
// replay resistance comes from the freshness window on the signed message and
// the token expiry enforced by the storage network.
type TokenIssuer struct {
	secret       []byte
	tokenTTL     time.Duration
	challengeTTL time.Duration
	audit        AuditSink
	now          func() time.Time
}

func NewTokenIssuer(secret string, tokenTTL, challengeTTL time.Duration, audit AuditSink) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token signing secret is required", domain.ErrConfiguration)
	}
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	return &TokenIssuer{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		challengeTTL: challengeTTL,
		audit:        audit,
		now:          time.Now,
	}, nil
}

// Challenge returns a fresh message for the principal to sign. Each call
// embeds a new nonce and timestamp, so no two challenges are identical.
func (i *TokenIssuer) Challenge(principal string) (*domain.AuthChallenge, error) {
	if !common.IsHexAddress(principal) {
		return nil, fmt.Errorf("%w: principal must be a hex address", domain.ErrValidation)
	}
	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("generate challenge nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)
	issuedAt := i.now().UTC().Truncate(time.Second)
	address := common.HexToAddress(principal).Hex()
	message := fmt.Sprintf("%s\naddress: %s\nnonce: %s\nissued-at: %s",
		challengeHeader, address, nonce, issuedAt.Format(time.RFC3339))
	return &domain.AuthChallenge{
		Principal: address,
		Nonce:     nonce,
		IssuedAt:  issuedAt,
		Message:   message,
	}, nil
}

// Issue recovers the signer address from a personal-sign signature over the
// challenge message and rejects unless it equals the claimed principal. The
// message itself is revalidated: structure, embedded address and freshness.
func (i *TokenIssuer) Issue(ctx context.Context, principal, message string, signature []byte) (*domain.CapabilityToken, error) {
	if !common.IsHexAddress(principal) {
		return nil, fmt.Errorf("%w: principal must be a hex address", domain.ErrValidation)
	}
	claimed := common.HexToAddress(principal)
	if err := i.validateMessage(claimed, message); err != nil {
		return nil, err
	}

	recovered, err := cryptoinfra.RecoverAddress([]byte(message), signature)
	if err != nil {
		i.appendAudit(ctx, claimed.Hex(), "malformed signature")
		return nil, err
	}
	if recovered != claimed {
		i.appendAudit(ctx, claimed.Hex(), "recovered address mismatch")
		return nil, fmt.Errorf("%w: recovered %s, claimed %s", domain.ErrInvalidSignature, recovered.Hex(), claimed.Hex())
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "impactchain",
		"sub": claimed.Hex(),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign capability token: %w", err)
	}
	return &domain.CapabilityToken{
		Token:     signed,
		Principal: claimed.Hex(),
		ExpiresAt: expiresAt,
	}, nil
}

func (i *TokenIssuer) validateMessage(claimed common.Address, message string) error {
	lines := strings.Split(message, "\n")
	if len(lines) != 4 || lines[0] != challengeHeader {
		return fmt.Errorf("%w: malformed challenge message", domain.ErrValidation)
	}
	addressLine := strings.TrimPrefix(lines[1], "address: ")
	nonceLine := strings.TrimPrefix(lines[2], "nonce: ")
	issuedLine := strings.TrimPrefix(lines[3], "issued-at: ")
	if addressLine == lines[1] || nonceLine == lines[2] || issuedLine == lines[3] {
		return fmt.Errorf("%w: malformed challenge message", domain.ErrValidation)
	}
	if !common.IsHexAddress(addressLine) || common.HexToAddress(addressLine) != claimed {
		return fmt.Errorf("%w: challenge is bound to a different principal", domain.ErrValidation)
	}
	if raw, err := hex.DecodeString(nonceLine); err != nil || len(raw) != 16 {
		return fmt.Errorf("%w: malformed challenge nonce", domain.ErrValidation)
	}
	issuedAt, err := time.Parse(time.RFC3339, issuedLine)
	if err != nil {
		return fmt.Errorf("%w: malformed challenge timestamp", domain.ErrValidation)
	}
	now := i.now().UTC()
	if issuedAt.After(now.Add(challengeSkew)) {
		return fmt.Errorf("%w: challenge issued in the future", domain.ErrValidation)
	}
	if now.Sub(issuedAt) > i.challengeTTL {
		return fmt.Errorf("%w: challenge expired", domain.ErrValidation)
	}
	return nil
}

func (i *TokenIssuer) appendAudit(ctx context.Context, principal, outcome string) {
	if i.audit == nil {
		return
	}
	err := i.audit.Append(ctx, domain.AuditEvent{
		EventType: domain.AuditEventTokenRejected,
		Outcome:   outcome,
		Payload:   map[string]any{"principal": principal},
	})
	if err != nil {
		log.Printf("audit append failed: %v", err)
	}
}
