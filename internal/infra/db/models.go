package db

import "time"

type PaymentReferenceModel struct {
	ReferenceID   string    `gorm:"primaryKey;size:32"`
	Amount        string    `gorm:"not null"`
	Recipient     string    `gorm:"not null"`
	Asset         string    `gorm:"not null"`
	SubjectID     int64     `gorm:"not null"`
	Status        string    `gorm:"index;not null"`
	ConfirmedTxID string
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time
}

func (PaymentReferenceModel) TableName() string { return "payment_references" }

type ResourceModel struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement:false"`
	Owner       string    `gorm:"index;not null"`
	ContentHash string    `gorm:"not null"`
	LabelsJSON  []byte    `gorm:"type:jsonb"`
	Price       string    `gorm:"not null"`
	Active      bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ResourceModel) TableName() string { return "resources" }

type AuditEventModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"index;not null"`
	ReferenceID string    `gorm:"index"`
	TxID        string
	Outcome     string
	PayloadJSON []byte    `gorm:"type:jsonb"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (AuditEventModel) TableName() string { return "audit_events" }
