package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentConfirmed || s == PaymentFailed
}

// PaymentReference correlates an off-chain payment intent with its later
// settlement confirmation. Created once, finalized exactly once.
type PaymentReference struct {
	ReferenceID   string
	Amount        decimal.Decimal
	Recipient     string
	Asset         string
	SubjectID     int64
	Status        PaymentStatus
	ConfirmedTxID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewReferenceID returns 128 bits of crypto/rand entropy as 32 hex chars.
func NewReferenceID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// VerificationOutcome is the enumerated result of cross-checking a settlement
// transaction against the reference stored at initiation.
type VerificationOutcome string

const (
	OutcomeVerified          VerificationOutcome = "VERIFIED"
	OutcomeReferenceMismatch VerificationOutcome = "REFERENCE_MISMATCH"
	OutcomeAmountMismatch    VerificationOutcome = "AMOUNT_MISMATCH"
	OutcomeRecipientMismatch VerificationOutcome = "RECIPIENT_MISMATCH"
	OutcomeAssetMismatch     VerificationOutcome = "ASSET_MISMATCH"
	OutcomeStatusFailed      VerificationOutcome = "STATUS_FAILED"
)

func (o VerificationOutcome) Reason() string {
	switch o {
	case OutcomeVerified:
		return ""
	case OutcomeReferenceMismatch:
		return "Reference ID mismatch"
	case OutcomeAmountMismatch:
		return "Amount mismatch"
	case OutcomeRecipientMismatch:
		return "Recipient mismatch"
	case OutcomeAssetMismatch:
		return "Asset mismatch"
	case OutcomeStatusFailed:
		return "Transaction failed"
	}
	return string(o)
}

// SettlementTransaction is the settlement authority's view of an executed
// transfer, keyed by its externally-assigned id.
type SettlementTransaction struct {
	ID        string
	Reference string
	Status    string
	Amount    decimal.Decimal
	Recipient string
	Asset     string
}

func (t SettlementTransaction) Failed() bool {
	switch strings.ToUpper(t.Status) {
	case "FAILED", "DECLINED", "REVERTED", "CANCELLED", "EXPIRED":
		return true
	}
	return false
}
