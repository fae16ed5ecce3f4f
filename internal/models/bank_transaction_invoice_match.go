package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransactionInvoiceMatch links one transaction to one invoice of a
// batch match: a single payment covering several invoices from the same
// supplier, or several payments covering one invoice. The legacy direct
// MatchedInvoiceID on BankTransaction stays for single matches.
type BankTransactionInvoiceMatch struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;index" json:"transaction_id"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"`

	MatchConfidence decimal.Decimal `gorm:"type:numeric(3,2)" json:"match_confidence"`
	MatchMethod     MatchMethod     `gorm:"size:32" json:"match_method"`
	MatchNotes      string          `json:"match_notes,omitempty"`
	MatchedByID     *uuid.UUID      `gorm:"type:uuid" json:"matched_by_id,omitempty"`
	MatchedAt       time.Time       `json:"matched_at"`

	CreatedAt time.Time `json:"created_at"`
}
