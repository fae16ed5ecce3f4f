package bank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a normalized transaction.
type TransactionType string

const (
	TypeAFRCredit      TransactionType = "AFR_CREDIT"
	TypeAFRDebit       TransactionType = "AFR_DEBIT"
	TypeTransferCredit TransactionType = "TRANSFER_CREDIT"
	TypeTransferDebit  TransactionType = "TRANSFER_DEBIT"
	TypePOSPurchase    TransactionType = "POS_PURCHASE"
	TypeBankFee        TransactionType = "BANK_FEE"
	TypeInterestCredit TransactionType = "INTEREST_CREDIT"
	TypeInterestDebit  TransactionType = "INTEREST_DEBIT"
	TypeOther          TransactionType = "OTHER"
)

var validTypes = map[TransactionType]struct{}{
	TypeAFRCredit: {}, TypeAFRDebit: {}, TypeTransferCredit: {},
	TypeTransferDebit: {}, TypePOSPurchase: {}, TypeBankFee: {},
	TypeInterestCredit: {}, TypeInterestDebit: {}, TypeOther: {},
}

// ValidType reports whether t is a known transaction type.
func ValidType(t TransactionType) bool {
	_, ok := validTypes[t]
	return ok
}

// Transaction is the canonical adapter output every bank format is
// normalized into.
//
// Sign convention: negative = debit (money leaving the account),
// positive = credit. Adapters must normalize to this regardless of how the
// source file represents direction.
type Transaction struct {
	Type        TransactionType
	BookingDate time.Time
	// ValueDate defaults to BookingDate when the bank does not distinguish.
	ValueDate time.Time

	Amount   decimal.Decimal
	Currency string

	Description      string
	ShortDescription string

	PayerName          string
	PayerIBAN          string
	PayerAccountNumber string
	PayerBIC           string

	BeneficiaryName          string
	BeneficiaryIBAN          string
	BeneficiaryAccountNumber string
	BeneficiaryBIC           string

	// Reference is the free-text payment reference. Invoice numbers and tax
	// numbers embedded here are the strongest matching signal.
	Reference string

	PartnerID     string
	TransactionID string
	PaymentID     string
	TypeCode      string

	// FeeAmount is always a non-negative magnitude when set.
	FeeAmount *decimal.Decimal

	CardNumber       string
	MerchantName     string
	MerchantLocation string

	OriginalAmount   *decimal.Decimal
	OriginalCurrency string
	ExchangeRate     *decimal.Decimal

	// Raw preserves bank-specific fields for audit and debugging. Run it
	// through SanitizeRaw before handing it to the persistence layer.
	Raw map[string]any
}

// NewTransaction builds a transaction with the required fields validated.
// ValueDate falls back to the booking date when zero.
func NewTransaction(typ TransactionType, booking, value time.Time, amount decimal.Decimal, currency string) (*Transaction, error) {
	if !ValidType(typ) {
		return nil, fmt.Errorf("invalid transaction type: %q", typ)
	}
	if booking.IsZero() {
		return nil, fmt.Errorf("booking date is required")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	if value.IsZero() {
		value = booking
	}
	return &Transaction{
		Type:        typ,
		BookingDate: booking,
		ValueDate:   value,
		Amount:      amount,
		Currency:    currency,
		Raw:         map[string]any{},
	}, nil
}

// Validate checks the invariants NewTransaction enforces, for transactions
// built field-by-field inside adapters.
func (t *Transaction) Validate() error {
	if !ValidType(t.Type) {
		return fmt.Errorf("invalid transaction type: %q", t.Type)
	}
	if t.BookingDate.IsZero() {
		return fmt.Errorf("booking date is required")
	}
	if t.ValueDate.IsZero() {
		return fmt.Errorf("value date is required")
	}
	if t.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if t.FeeAmount != nil && t.FeeAmount.IsNegative() {
		return fmt.Errorf("fee amount must not be negative")
	}
	return nil
}

// IsSystemType reports whether the transaction is a fee or interest booking
// that gets auto-categorized instead of entering invoice matching.
func (t *Transaction) IsSystemType() bool {
	switch t.Type {
	case TypeBankFee, TypeInterestCredit, TypeInterestDebit:
		return true
	}
	return false
}

// StatementMetadata describes one parsed statement file.
type StatementMetadata struct {
	BankCode string
	BankName string
	BankBIC  string

	AccountNumber string
	AccountIBAN   string

	PeriodFrom time.Time
	PeriodTo   time.Time

	StatementNumber string

	OpeningBalance *decimal.Decimal
	// ClosingBalance may be nil; some banks omit it and ingestion can
	// recompute it from the credit/debit totals.
	ClosingBalance *decimal.Decimal

	Raw map[string]any
}

// Validate checks the statement-level fields whose absence is fatal for the
// whole file.
func (m *StatementMetadata) Validate() error {
	if m.AccountNumber == "" && m.AccountIBAN == "" {
		return fmt.Errorf("account number is required")
	}
	if m.PeriodFrom.IsZero() || m.PeriodTo.IsZero() {
		return fmt.Errorf("statement period is required")
	}
	return nil
}

// SanitizeRaw converts a raw bank-field map into a form that survives a
// round trip through JSON storage: dates become ISO strings, decimals become
// plain number strings, nested maps and slices are walked recursively.
func SanitizeRaw(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format("2006-01-02")
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format("2006-01-02")
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.String()
	case map[string]any:
		return SanitizeRaw(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}
