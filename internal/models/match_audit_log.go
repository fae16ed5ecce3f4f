package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchAuditLog records every manual match mutation for operator review.
type MatchAuditLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID   uuid.UUID  `gorm:"type:uuid;index" json:"transaction_id"`
	Action          string     `gorm:"size:32" json:"action"`
	PreviousInvoice *uuid.UUID `gorm:"type:uuid" json:"previous_invoice,omitempty"`
	NewInvoice      *uuid.UUID `gorm:"type:uuid" json:"new_invoice,omitempty"`
	PerformedByID   *uuid.UUID `gorm:"type:uuid" json:"performed_by_id,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
