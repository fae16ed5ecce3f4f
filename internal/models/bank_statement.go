package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StatementStatus is the lifecycle state of an uploaded statement.
type StatementStatus string

const (
	StatementUploaded StatementStatus = "UPLOADED"
	StatementParsing  StatementStatus = "PARSING"
	StatementParsed   StatementStatus = "PARSED"
	StatementError    StatementStatus = "ERROR"
)

// BankStatement is one imported statement file. It exclusively owns its
// transactions; deleting a statement cascades to them.
//
// Two unique constraints back the duplicate checks: (company, file_hash)
// catches byte-identical re-uploads, (company, bank_code, account_number,
// period_from, period_to) catches the same period re-exported under a
// different filename.
type BankStatement struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;index;uniqueIndex:uidx_statement_hash;uniqueIndex:uidx_statement_period" json:"company_id"`
	UploadedByID *uuid.UUID `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`

	Filename string `json:"filename"`
	FileHash string `gorm:"size:64;uniqueIndex:uidx_statement_hash" json:"file_hash"`

	BankCode      string `gorm:"size:32;uniqueIndex:uidx_statement_period" json:"bank_code"`
	BankName      string `json:"bank_name"`
	BankBIC       string `gorm:"size:16" json:"bank_bic"`
	AccountNumber string `gorm:"size:64;uniqueIndex:uidx_statement_period" json:"account_number"`
	AccountIBAN   string `gorm:"size:34" json:"account_iban"`

	PeriodFrom      *time.Time `gorm:"uniqueIndex:uidx_statement_period" json:"period_from,omitempty"`
	PeriodTo        *time.Time `gorm:"uniqueIndex:uidx_statement_period" json:"period_to,omitempty"`
	StatementNumber string     `json:"statement_number"`

	OpeningBalance *decimal.Decimal `gorm:"type:numeric(18,2)" json:"opening_balance,omitempty"`
	ClosingBalance *decimal.Decimal `gorm:"type:numeric(18,2)" json:"closing_balance,omitempty"`

	Status       StatementStatus `gorm:"size:16;index" json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`

	// Derived aggregates, recomputed after parsing and after every match mutation.
	TotalTransactions int             `json:"total_transactions"`
	CreditCount       int             `json:"credit_count"`
	DebitCount        int             `json:"debit_count"`
	TotalCredits      decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_credits"`
	TotalDebits       decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_debits"`
	MatchedCount      int             `json:"matched_count"`

	RawMetadata datatypes.JSON `json:"raw_metadata,omitempty"`

	Transactions []BankTransaction `gorm:"foreignKey:StatementID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
