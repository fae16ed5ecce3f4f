package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceDirection string

const (
	InvoiceInbound  InvoiceDirection = "INBOUND"
	InvoiceOutbound InvoiceDirection = "OUTBOUND"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPrepared PaymentStatus = "PREPARED"
	PaymentPaid     PaymentStatus = "PAID"
)

// OperationStorno marks a cancelled invoice; excluded from matching.
const OperationStorno = "STORNO"

// Invoice is the read model the matching engine works against. It is
// populated by the invoice synchronization collaborator; the engine only
// reads its fields and calls the payment-status mutators.
type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;index" json:"company_id"`

	NavInvoiceNumber string           `gorm:"size:64;index" json:"nav_invoice_number"`
	InvoiceDirection InvoiceDirection `gorm:"size:16;index" json:"invoice_direction"`
	InvoiceOperation string           `gorm:"size:16" json:"invoice_operation"`

	SupplierName              string `gorm:"index" json:"supplier_name"`
	SupplierTaxNumber         string `gorm:"size:32;index" json:"supplier_tax_number"`
	SupplierBankAccountNumber string `gorm:"size:64" json:"supplier_bank_account_number"`

	InvoiceGrossAmount decimal.Decimal `gorm:"type:numeric(18,2);index" json:"invoice_gross_amount"`
	Currency           string          `gorm:"size:3" json:"currency"`

	PaymentDueDate  *time.Time `gorm:"index" json:"payment_due_date,omitempty"`
	FulfillmentDate *time.Time `json:"fulfillment_date,omitempty"`

	PaymentStatus  PaymentStatus `gorm:"size:16;index" json:"payment_status"`
	PaymentDate    *time.Time    `json:"payment_date,omitempty"`
	AutoMarkedPaid bool          `json:"auto_marked_paid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveDueDate is the payment due date, falling back to the fulfillment
// date when the invoice carries none.
func (i *Invoice) EffectiveDueDate() *time.Time {
	if i.PaymentDueDate != nil {
		return i.PaymentDueDate
	}
	return i.FulfillmentDate
}

// MarkAsPaid sets the invoice paid as of the given date. autoMarked records
// whether the matching engine did it rather than an operator.
func (i *Invoice) MarkAsPaid(date time.Time, autoMarked bool) {
	i.PaymentStatus = PaymentPaid
	i.PaymentDate = &date
	i.AutoMarkedPaid = autoMarked
}

// MarkAsPrepared flags the invoice as queued for payment.
func (i *Invoice) MarkAsPrepared() {
	i.PaymentStatus = PaymentPrepared
}
