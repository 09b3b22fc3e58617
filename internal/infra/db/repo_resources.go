package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Register(ctx context.Context, res domain.Resource) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if res.ID == 0 {
		return fmt.Errorf("%w: resource id is required", domain.ErrValidation)
	}
	labels, err := json.Marshal(res.Labels)
	if err != nil {
		return fmt.Errorf("%w: encode labels: %v", domain.ErrStorage, err)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	model := ResourceModel{
		ID:          res.ID,
		Owner:       res.Owner,
		ContentHash: res.ContentHash,
		LabelsJSON:  labels,
		Price:       res.Price.String(),
		Active:      res.Active,
		CreatedAt:   res.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: resource %d already registered", domain.ErrReplay, res.ID)
		}
		return fmt.Errorf("%w: insert resource: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id uint64) (*domain.Resource, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ResourceModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resource %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load resource: %v", domain.ErrStorage, err)
	}
	return modelToResource(model)
}

func (r *ResourceRepository) GetByIDs(ctx context.Context, ids []uint64) ([]domain.Resource, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ResourceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: load resources: %v", domain.ErrStorage, err)
	}
	out := make([]domain.Resource, 0, len(models))
	for _, model := range models {
		res, err := modelToResource(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// Deactivate flips the active flag; resource rows are never deleted.
func (r *ResourceRepository) Deactivate(ctx context.Context, id uint64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&ResourceModel{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("%w: deactivate resource: %v", domain.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: resource %d", domain.ErrNotFound, id)
	}
	return nil
}

func modelToResource(model ResourceModel) (*domain.Resource, error) {
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: stored price %q is not decimal", domain.ErrStorage, model.Price)
	}
	var labels []string
	if len(model.LabelsJSON) > 0 {
		if err := json.Unmarshal(model.LabelsJSON, &labels); err != nil {
			return nil, fmt.Errorf("%w: decode labels: %v", domain.ErrStorage, err)
		}
	}
	return &domain.Resource{
		ID:          model.ID,
		Owner:       model.Owner,
		ContentHash: model.ContentHash,
		Labels:      labels,
		Price:       price,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
	}, nil
}
