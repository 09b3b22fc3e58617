package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/shopspring/decimal"
)

// PaymentService owns the reference lifecycle: initiation against the ledger
// and client-triggered confirmation against the settlement authority.
//
// Finalization policy: deterministic verification failures (identifier or
// value mismatch, failed settlement status) move the reference to FAILED,
// terminally. Transient settlement-authority errors leave it PENDING; the
// service never retries on its own, the client resubmits confirm.
type PaymentService struct {
	ledger     ReferenceLedger
	settlement SettlementAuthority
	policy     PolicyGate
	audit      AuditSink
	timeout    time.Duration
}

func NewPaymentService(ledger ReferenceLedger, settlement SettlementAuthority, policy PolicyGate, audit AuditSink, timeout time.Duration) (*PaymentService, error) {
	if ledger == nil {
		return nil, errors.New("reference ledger is required")
	}
	if settlement == nil {
		return nil, fmt.Errorf("%w: settlement authority is not configured", domain.ErrConfiguration)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaymentService{
		ledger:     ledger,
		settlement: settlement,
		policy:     policy,
		audit:      audit,
		timeout:    timeout,
	}, nil
}

type InitiateRequest struct {
	Amount    string
	Recipient string
	Asset     string
	SubjectID int64
}

func (s *PaymentService) Initiate(ctx context.Context, req InitiateRequest) (string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return "", fmt.Errorf("%w: amount is not a decimal number", domain.ErrValidation)
	}
	if amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return "", fmt.Errorf("%w: recipient is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Asset) == "" {
		return "", fmt.Errorf("%w: asset is required", domain.ErrValidation)
	}

	if s.policy != nil {
		decision, err := s.policy.Evaluate(ctx, domain.PolicyInput{
			Amount:    amount.String(),
			Recipient: req.Recipient,
			Asset:     req.Asset,
			SubjectID: req.SubjectID,
		})
		if err != nil {
			return "", fmt.Errorf("evaluate initiation policy: %w", err)
		}
		if !decision.Allow {
			return "", fmt.Errorf("%w: denied by policy: %s", domain.ErrValidation, strings.Join(decision.Deny, ", "))
		}
	}

	referenceID, err := s.ledger.Create(ctx, domain.PaymentReference{
		Amount:    amount,
		Recipient: req.Recipient,
		Asset:     req.Asset,
		SubjectID: req.SubjectID,
		Status:    domain.PaymentPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	s.appendAudit(ctx, domain.AuditEvent{
		EventType:   domain.AuditEventPaymentInitiated,
		ReferenceID: referenceID,
		Payload: map[string]any{
			"amount":     amount.String(),
			"recipient":  req.Recipient,
			"asset":      req.Asset,
			"subject_id": req.SubjectID,
		},
	})
	return referenceID, nil
}

type ConfirmResult struct {
	Success bool
	Outcome domain.VerificationOutcome
}

// Confirm performs the single allowed PENDING -> terminal transition. It runs
// detached from the caller's cancellation: once verification starts, the
// result is persisted even if the client disconnects mid-flight.
func (s *PaymentService) Confirm(ctx context.Context, referenceID, txID string) (ConfirmResult, error) {
	if strings.TrimSpace(referenceID) == "" || strings.TrimSpace(txID) == "" {
		return ConfirmResult{}, fmt.Errorf("%w: referenceId and externalTransactionId are required", domain.ErrValidation)
	}
	ctx = context.WithoutCancel(ctx)

	ref, err := s.ledger.Lookup(ctx, referenceID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if ref.Status.Terminal() {
		return ConfirmResult{}, fmt.Errorf("%w: reference %s is %s", domain.ErrReplay, referenceID, ref.Status)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	tx, err := s.settlement.GetTransaction(callCtx, txID)
	cancel()
	if err != nil {
		// Transient or unknown-tx failures leave the reference PENDING and
		// retryable; log identifiers for manual reconciliation.
		log.Printf("settlement lookup failed: reference=%s tx=%s err=%v", referenceID, txID, err)
		return ConfirmResult{}, err
	}

	outcome := verifyTransaction(ref, tx)
	if outcome == domain.OutcomeVerified {
		if err := s.ledger.Complete(ctx, referenceID, domain.PaymentConfirmed, txID); err != nil {
			return ConfirmResult{}, err
		}
		s.appendAudit(ctx, domain.AuditEvent{
			EventType:   domain.AuditEventPaymentConfirmed,
			ReferenceID: referenceID,
			TxID:        txID,
			Outcome:     string(outcome),
		})
		return ConfirmResult{Success: true, Outcome: outcome}, nil
	}

	if err := s.ledger.Complete(ctx, referenceID, domain.PaymentFailed, txID); err != nil {
		return ConfirmResult{}, err
	}
	s.appendAudit(ctx, domain.AuditEvent{
		EventType:   domain.AuditEventPaymentFailed,
		ReferenceID: referenceID,
		TxID:        txID,
		Outcome:     string(outcome),
	})
	return ConfirmResult{Success: false, Outcome: outcome}, nil
}

func verifyTransaction(ref *domain.PaymentReference, tx *domain.SettlementTransaction) domain.VerificationOutcome {
	if tx.Reference != ref.ReferenceID {
		return domain.OutcomeReferenceMismatch
	}
	if tx.Failed() {
		return domain.OutcomeStatusFailed
	}
	if !tx.Amount.Equal(ref.Amount) {
		return domain.OutcomeAmountMismatch
	}
	if !strings.EqualFold(tx.Recipient, ref.Recipient) {
		return domain.OutcomeRecipientMismatch
	}
	if !strings.EqualFold(tx.Asset, ref.Asset) {
		return domain.OutcomeAssetMismatch
	}
	return domain.OutcomeVerified
}

func (s *PaymentService) appendAudit(ctx context.Context, event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, event); err != nil {
		log.Printf("audit append failed: %v", err)
	}
}
