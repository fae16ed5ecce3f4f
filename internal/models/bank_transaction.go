package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MatchMethod records how a transaction was linked to its counterpart.
type MatchMethod string

const (
	MatchReferenceExact        MatchMethod = "REFERENCE_EXACT"
	MatchAmountIBAN            MatchMethod = "AMOUNT_IBAN"
	MatchFuzzyName             MatchMethod = "FUZZY_NAME"
	MatchAmountDateOnly        MatchMethod = "AMOUNT_DATE_ONLY"
	MatchTransferExact         MatchMethod = "TRANSFER_EXACT"
	MatchReimbursementPair     MatchMethod = "REIMBURSEMENT_PAIR"
	MatchManual                MatchMethod = "MANUAL"
	MatchManualBatch           MatchMethod = "MANUAL_BATCH"
	MatchSystemAutoCategorized MatchMethod = "SYSTEM_AUTO_CATEGORIZED"
)

// BankTransaction is one booked item of a statement. Negative amounts are
// debits (money leaving the account), positive amounts are credits.
type BankTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	StatementID uuid.UUID `gorm:"type:uuid;index" json:"statement_id"`

	TransactionType string    `gorm:"size:32;index" json:"transaction_type"`
	BookingDate     time.Time `gorm:"index" json:"booking_date"`
	ValueDate       time.Time `json:"value_date"`

	Amount   decimal.Decimal `gorm:"type:numeric(18,2);index" json:"amount"`
	Currency string          `gorm:"size:3" json:"currency"`

	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`

	PayerName          string `json:"payer_name,omitempty"`
	PayerIBAN          string `gorm:"size:34" json:"payer_iban,omitempty"`
	PayerAccountNumber string `gorm:"size:64" json:"payer_account_number,omitempty"`
	PayerBIC           string `gorm:"size:16" json:"payer_bic,omitempty"`
	BeneficiaryName    string `json:"beneficiary_name,omitempty"`
	BeneficiaryIBAN    string `gorm:"size:34" json:"beneficiary_iban,omitempty"`
	BeneficiaryAccount string `gorm:"size:64;column:beneficiary_account_number" json:"beneficiary_account_number,omitempty"`
	BeneficiaryBIC     string `gorm:"size:16" json:"beneficiary_bic,omitempty"`

	Reference string `json:"reference,omitempty"`

	PartnerID           string `gorm:"size:64" json:"partner_id,omitempty"`
	BankTransactionID   string `gorm:"size:64;column:transaction_id" json:"transaction_id,omitempty"`
	PaymentID           string `gorm:"size:64" json:"payment_id,omitempty"`
	TransactionTypeCode string `gorm:"size:32" json:"transaction_type_code,omitempty"`

	FeeAmount *decimal.Decimal `gorm:"type:numeric(18,2)" json:"fee_amount,omitempty"`

	CardNumber       string `gorm:"size:32" json:"card_number,omitempty"`
	MerchantName     string `json:"merchant_name,omitempty"`
	MerchantLocation string `json:"merchant_location,omitempty"`

	OriginalAmount   *decimal.Decimal `gorm:"type:numeric(18,2)" json:"original_amount,omitempty"`
	OriginalCurrency string           `gorm:"size:3" json:"original_currency,omitempty"`
	ExchangeRate     *decimal.Decimal `gorm:"type:numeric(18,6)" json:"exchange_rate,omitempty"`

	RawData datatypes.JSON `json:"raw_data,omitempty"`

	// Match state. MatchedReimbursementID is a symmetric self-reference:
	// both rows of a pair point at each other.
	Matched                bool            `gorm:"index" json:"matched"`
	MatchedInvoiceID       *uuid.UUID      `gorm:"type:uuid" json:"matched_invoice_id,omitempty"`
	MatchedTransferID      *uuid.UUID      `gorm:"type:uuid" json:"matched_transfer_id,omitempty"`
	MatchedReimbursementID *uuid.UUID      `gorm:"type:uuid" json:"matched_reimbursement_id,omitempty"`
	MatchConfidence        decimal.Decimal `gorm:"type:numeric(3,2)" json:"match_confidence"`
	MatchMethod            MatchMethod     `gorm:"size:32" json:"match_method"`
	MatchedAt              *time.Time      `json:"matched_at,omitempty"`
	MatchedByID            *uuid.UUID      `gorm:"type:uuid" json:"matched_by_id,omitempty"`
	MatchNotes             string          `json:"match_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDebit reports whether the transaction moves money out of the account.
func (t *BankTransaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// ClearMatch resets every match field. Callers persist the row afterwards.
func (t *BankTransaction) ClearMatch() {
	t.Matched = false
	t.MatchedInvoiceID = nil
	t.MatchedTransferID = nil
	t.MatchedReimbursementID = nil
	t.MatchConfidence = decimal.Zero
	t.MatchMethod = ""
	t.MatchedAt = nil
	t.MatchedByID = nil
	t.MatchNotes = ""
}
