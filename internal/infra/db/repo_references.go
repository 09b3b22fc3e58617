package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) Create(ctx context.Context, ref domain.PaymentReference) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	id, err := domain.NewReferenceID()
	if err != nil {
		return "", fmt.Errorf("%w: generate reference id: %v", domain.ErrStorage, err)
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	model := PaymentReferenceModel{
		ReferenceID: id,
		Amount:      ref.Amount.String(),
		Recipient:   ref.Recipient,
		Asset:       ref.Asset,
		SubjectID:   ref.SubjectID,
		Status:      string(domain.PaymentPending),
		CreatedAt:   ref.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("%w: insert payment reference: %v", domain.ErrStorage, err)
	}
	return id, nil
}

func (r *ReferenceRepository) Lookup(ctx context.Context, referenceID string) (*domain.PaymentReference, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model PaymentReferenceModel
	err := r.db.WithContext(ctx).First(&model, "reference_id = ?", referenceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reference %s", domain.ErrNotFound, referenceID)
		}
		return nil, fmt.Errorf("%w: load payment reference: %v", domain.ErrStorage, err)
	}
	return modelToReference(model)
}

// Complete is the single allowed transition. The status guard in the WHERE
// clause makes it an atomic compare-and-set: concurrent callers race on the
// row update, not on a read-then-write.
func (r *ReferenceRepository) Complete(ctx context.Context, referenceID string, status domain.PaymentStatus, txID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if !status.Terminal() {
		return fmt.Errorf("%w: status %s is not terminal", domain.ErrValidation, status)
	}
	res := r.db.WithContext(ctx).
		Model(&PaymentReferenceModel{}).
		Where("reference_id = ? AND status = ?", referenceID, string(domain.PaymentPending)).
		Updates(map[string]any{
			"status":          string(status),
			"confirmed_tx_id": txID,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("%w: finalize payment reference: %v", domain.ErrStorage, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var model PaymentReferenceModel
	err := r.db.WithContext(ctx).First(&model, "reference_id = ?", referenceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: reference %s", domain.ErrNotFound, referenceID)
	}
	if err != nil {
		return fmt.Errorf("%w: load payment reference: %v", domain.ErrStorage, err)
	}
	return fmt.Errorf("%w: reference %s is %s", domain.ErrReplay, referenceID, model.Status)
}

func modelToReference(model PaymentReferenceModel) (*domain.PaymentReference, error) {
	amount, err := decimal.NewFromString(model.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: stored amount %q is not decimal", domain.ErrStorage, model.Amount)
	}
	return &domain.PaymentReference{
		ReferenceID:   model.ReferenceID,
		Amount:        amount,
		Recipient:     model.Recipient,
		Asset:         model.Asset,
		SubjectID:     model.SubjectID,
		Status:        domain.PaymentStatus(model.Status),
		ConfirmedTxID: model.ConfirmedTxID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}, nil
}
