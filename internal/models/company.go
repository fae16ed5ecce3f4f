package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant every statement, transaction and invoice belongs to.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `json:"name"`
	TaxNumber string    `gorm:"size:32" json:"tax_number"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the acting operator on uploads and manual matches.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
