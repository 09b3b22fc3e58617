package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"gorm.io/gorm"
)

type AuditEventRepository struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

// Append inserts a new audit row. Rows are never updated or deleted.
func (r *AuditEventRepository) Append(ctx context.Context, event domain.AuditEvent) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if event.EventType == "" {
		return fmt.Errorf("%w: event type is required", domain.ErrValidation)
	}
	id := event.ID
	if id == "" {
		id = newUUID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	var payload []byte
	if event.Payload != nil {
		encoded, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("%w: encode audit payload: %v", domain.ErrStorage, err)
		}
		payload = encoded
	}
	model := AuditEventModel{
		ID:          id,
		EventType:   string(event.EventType),
		ReferenceID: event.ReferenceID,
		TxID:        event.TxID,
		Outcome:     event.Outcome,
		PayloadJSON: payload,
		CreatedAt:   event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("%w: insert audit event: %v", domain.ErrStorage, err)
	}
	return nil
}

// ListByReference returns the audit trail for one reference id, oldest first.
func (r *AuditEventRepository) ListByReference(ctx context.Context, referenceID string) ([]domain.AuditEvent, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AuditEventModel
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load audit events: %v", domain.ErrStorage, err)
	}
	out := make([]domain.AuditEvent, 0, len(models))
	for _, model := range models {
		event := domain.AuditEvent{
			ID:          model.ID,
			EventType:   domain.AuditEventType(model.EventType),
			ReferenceID: model.ReferenceID,
			TxID:        model.TxID,
			Outcome:     model.Outcome,
			CreatedAt:   model.CreatedAt,
		}
		if len(model.PayloadJSON) > 0 {
			if err := json.Unmarshal(model.PayloadJSON, &event.Payload); err != nil {
				return nil, fmt.Errorf("%w: decode audit payload: %v", domain.ErrStorage, err)
			}
		}
		out = append(out, event)
	}
	return out, nil
}
