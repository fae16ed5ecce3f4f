package bank

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// Revolut exports a flat CSV, one row per transaction, with named header
// columns. Only COMPLETED rows are imported, and "Total amount" (fees
// included) is the canonical signed value, not "Amount".
const (
	revolutCode = "REVOLUT"
	revolutName = "Revolut"
	revolutBIC  = "REVOLT21"
)

type RevolutAdapter struct{}

func NewRevolutAdapter() *RevolutAdapter { return &RevolutAdapter{} }

func (a *RevolutAdapter) Code() string { return revolutCode }
func (a *RevolutAdapter) Name() string { return revolutName }
func (a *RevolutAdapter) BIC() string  { return revolutBIC }

const (
	colDateStarted   = "Date started (UTC)"
	colDateCompleted = "Date completed (UTC)"
	colType          = "Type"
	colState         = "State"
	colDescription   = "Description"
	colReference     = "Reference"
	colPayer         = "Payer"
	colOrigCurrency  = "Orig currency"
	colOrigAmount    = "Orig amount"
	colPaymentCcy    = "Payment currency"
	colTotalAmount   = "Total amount"
	colExchangeRate  = "Exchange rate"
	colFee           = "Fee"
	colAccount       = "Account"
	colBenefAccount  = "Beneficiary account number"
	colBenefIBAN     = "Beneficiary IBAN"
	colBenefBIC      = "Beneficiary BIC"
	colMCC           = "MCC"
)

func (a *RevolutAdapter) Detect(data []byte, filename string) bool {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return false
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte(colDateStarted)) &&
		bytes.Contains(head, []byte(colTotalAmount))
}

func (a *RevolutAdapter) Parse(data []byte) (*ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &StatementParseError{Bank: revolutName, Reason: "invalid CSV", Err: err}
	}
	if len(records) < 1 {
		return nil, &StatementParseError{Bank: revolutName, Reason: "empty file"}
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colDateStarted, colState, colTotalAmount, colPaymentCcy} {
		if _, ok := cols[required]; !ok {
			return nil, &StatementParseError{Bank: revolutName, Reason: fmt.Sprintf("missing column %q", required)}
		}
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	meta := &StatementMetadata{
		BankCode: revolutCode,
		BankName: revolutName,
		BankBIC:  revolutBIC,
		Raw:      map[string]any{},
	}

	result := &ParseResult{Metadata: meta}
	for rowNo, row := range records[1:] {
		if field(row, colState) != "COMPLETED" {
			continue
		}
		tx, err := a.parseRow(row, field)
		if err != nil {
			result.Skipped = append(result.Skipped, ParseError{
				Bank: revolutName, Block: rowNo + 1, Reason: err.Error(), Err: err,
			})
			continue
		}
		if meta.AccountNumber == "" {
			meta.AccountNumber = CleanAccountNumber(field(row, colAccount))
		}
		if meta.PeriodFrom.IsZero() || tx.BookingDate.Before(meta.PeriodFrom) {
			meta.PeriodFrom = tx.BookingDate
		}
		if tx.BookingDate.After(meta.PeriodTo) {
			meta.PeriodTo = tx.BookingDate
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	if err := meta.Validate(); err != nil {
		return nil, &StatementParseError{Bank: revolutName, Reason: err.Error(), Err: err}
	}
	return result, nil
}

func (a *RevolutAdapter) parseRow(row []string, field func([]string, string) string) (*Transaction, error) {
	booking, err := ParseDate(field(row, colDateStarted))
	if err != nil {
		return nil, err
	}
	value := booking
	if completed := field(row, colDateCompleted); completed != "" {
		if d, err := ParseDate(completed); err == nil {
			value = d
		}
	}

	amount, err := CleanAmount(field(row, colTotalAmount))
	if err != nil {
		return nil, err
	}
	currency := field(row, colPaymentCcy)
	if currency == "" {
		currency = "HUF"
	}

	tx := Transaction{
		Type:                     revolutClassify(field(row, colType), amount.IsNegative()),
		BookingDate:              booking.Truncate(24 * time.Hour),
		ValueDate:                value.Truncate(24 * time.Hour),
		Amount:                   amount,
		Currency:                 currency,
		Description:              field(row, colDescription),
		Reference:                field(row, colReference),
		PayerName:                field(row, colPayer),
		TypeCode:                 field(row, colType),
		BeneficiaryAccountNumber: CleanAccountNumber(field(row, colBenefAccount)),
		BeneficiaryIBAN:          CleanAccountNumber(field(row, colBenefIBAN)),
		BeneficiaryBIC:           field(row, colBenefBIC),
		Raw: map[string]any{
			"type": field(row, colType),
			"mcc":  field(row, colMCC),
		},
	}
	if tx.Type == TypePOSPurchase {
		tx.MerchantName = tx.Description
	}

	if fee := field(row, colFee); fee != "" {
		if d, err := CleanAmount(fee); err == nil && !d.IsZero() {
			abs := d.Abs()
			tx.FeeAmount = &abs
		}
	}
	if orig := field(row, colOrigCurrency); orig != "" && orig != currency {
		tx.OriginalCurrency = orig
		if d, err := CleanAmount(field(row, colOrigAmount)); err == nil {
			tx.OriginalAmount = &d
		}
		if d, err := CleanAmount(field(row, colExchangeRate)); err == nil {
			tx.ExchangeRate = &d
		}
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}

func revolutClassify(typeCode string, negative bool) TransactionType {
	switch strings.ToUpper(typeCode) {
	case "CARD_PAYMENT", "CARD_REFUND":
		if negative {
			return TypePOSPurchase
		}
		return TypeOther
	case "TRANSFER":
		if negative {
			return TypeTransferDebit
		}
		return TypeTransferCredit
	case "TOPUP":
		return TypeTransferCredit
	case "FEE":
		return TypeBankFee
	case "INTEREST":
		if negative {
			return TypeInterestDebit
		}
		return TypeInterestCredit
	default:
		return TypeOther
	}
}
