package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferBatch groups outgoing transfers generated for the bank. Transfers
// become matching candidates only once their batch is flagged UsedInBank.
type TransferBatch struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Name       string    `json:"name"`
	UsedInBank bool      `gorm:"index" json:"used_in_bank"`
	CreatedAt  time.Time `json:"created_at"`
}

// Transfer is one outgoing payment order (read model for matching).
type Transfer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID   uuid.UUID `gorm:"type:uuid;index" json:"batch_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;index" json:"company_id"`

	Amount        decimal.Decimal `gorm:"type:numeric(18,2);index" json:"amount"`
	Currency      string          `gorm:"size:3" json:"currency"`
	ExecutionDate time.Time       `gorm:"index" json:"execution_date"`

	BeneficiaryName          string `json:"beneficiary_name"`
	BeneficiaryAccountNumber string `gorm:"size:64" json:"beneficiary_account_number"`

	CreatedAt time.Time `json:"created_at"`
}
