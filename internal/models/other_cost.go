package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OtherCost is created automatically for bank fees and interest so those
// transactions leave the unmatched pool without needing an invoice.
type OtherCost struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	TransactionID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"transaction_id"`

	CostType    string          `gorm:"size:32" json:"cost_type"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Description string          `json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
