package bank

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/extractor"
)

// K&H statement PDFs use a two-date-column table: booking date, value date,
// description and the signed amount on one line, with the counterparty name,
// account number and reference on continuation lines:
//
//	2025.01.14 2025.01.15 átutalás forintban -229 125
//	IT Cardigan Kft.
//	10401000-12345678-00000000
//	Közlemény: 2025-000052
//
// Continuation lines are consumed until the next date line or a
// balance-summary marker.
const (
	khCode = "KH"
	khName = "K&H Bank"
	khBIC  = "OKHBHUHB"
)

type KHAdapter struct{}

func NewKHAdapter() *KHAdapter { return &KHAdapter{} }

func (a *KHAdapter) Code() string { return khCode }
func (a *KHAdapter) Name() string { return khName }
func (a *KHAdapter) BIC() string  { return khBIC }

var (
	khHeaderPrefix = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2})\.?\s+(\d{4}\.\d{2}\.\d{2})\.?\s`)
	khAccountLine  = regexp.MustCompile(`^\d{8}-\d{8}(-\d{8})?$`)
)

var khSummaryMarkers = []string{
	"összesen", "Záró egyenleg", "EGYENLEG", "Nyitó egyenleg",
}

// Closing balances beyond this magnitude are treated as extraction garbage
// and recomputed from the summary totals.
var khPlausibleBalance = decimal.New(1, 13) // 10^13

func (a *KHAdapter) Detect(data []byte, filename string) bool {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return false
	}
	page, err := extractor.FirstPage(data)
	if err != nil {
		return false
	}
	return strings.Contains(page, "K&H") || strings.Contains(page, khBIC)
}

func (a *KHAdapter) Parse(data []byte) (*ParseResult, error) {
	pages, err := extractor.Pages(data)
	if err != nil {
		return nil, &StatementParseError{Bank: khName, Reason: "text extraction failed", Err: err}
	}
	return a.parseText(strings.Join(pages, "\n"))
}

func (a *KHAdapter) parseText(text string) (*ParseResult, error) {
	lines := splitLines(text)

	meta := &StatementMetadata{
		BankCode: khCode,
		BankName: khName,
		BankBIC:  khBIC,
		Raw:      map[string]any{},
	}
	var creditTotal, debitTotal *decimal.Decimal
	for _, line := range lines {
		if v, ok := labelValue(line, "Számlaszám"); ok {
			meta.AccountNumber = CleanAccountNumber(v)
		}
		if v, ok := labelValue(line, "IBAN"); ok {
			meta.AccountIBAN = CleanAccountNumber(v)
		}
		if v, ok := labelValue(line, "Kivonat sorszáma"); ok {
			meta.StatementNumber = v
		}
		if v, ok := labelValue(line, "Kivonat időszaka"); ok {
			if from, to, err := parsePeriod(v); err == nil {
				meta.PeriodFrom, meta.PeriodTo = from, to
			}
		}
		if v, ok := labelValue(line, "Nyitó egyenleg"); ok {
			if d, err := CleanAmount(v); err == nil {
				meta.OpeningBalance = &d
			}
		}
		if v, ok := labelValue(line, "Záró egyenleg"); ok {
			if d, err := CleanAmount(v); err == nil {
				meta.ClosingBalance = &d
			}
		}
		if v, ok := labelValue(line, "Jóváírások összesen"); ok {
			if d, err := CleanAmount(v); err == nil {
				creditTotal = &d
			}
		}
		if v, ok := labelValue(line, "Terhelések összesen"); ok {
			if d, err := CleanAmount(v); err == nil {
				debitTotal = &d
			}
		}
	}
	if err := meta.Validate(); err != nil {
		return nil, &StatementParseError{Bank: khName, Reason: err.Error(), Err: err}
	}

	result := &ParseResult{Metadata: meta}
	for blockNo, block := range segmentBlocks(lines, khIsHeader) {
		block = khTrimBlock(block)
		tx, err := a.parseBlock(block)
		if err != nil {
			result.Skipped = append(result.Skipped, ParseError{
				Bank: khName, Block: blockNo, Reason: err.Error(), Err: err,
			})
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	a.fixClosingBalance(meta, creditTotal, debitTotal, result.Transactions)
	return result, nil
}

func khIsHeader(line string) bool {
	if !khHeaderPrefix.MatchString(line) {
		return false
	}
	_, _, ok := TrailingAmount(line)
	return ok
}

// khTrimBlock cuts a block off at the first balance-summary line, so the
// closing summary does not leak into the last transaction's details.
func khTrimBlock(block []string) []string {
	for i, line := range block[1:] {
		for _, marker := range khSummaryMarkers {
			if strings.Contains(line, marker) {
				return block[:i+1]
			}
		}
	}
	return block
}

func (a *KHAdapter) parseBlock(block []string) (*Transaction, error) {
	header := block[0]
	m := khHeaderPrefix.FindStringSubmatch(header)
	booking, err := ParseDate(m[1])
	if err != nil {
		return nil, err
	}
	value, err := ParseDate(m[2])
	if err != nil {
		return nil, err
	}

	amountStr, rest, ok := TrailingAmount(header)
	if !ok {
		return nil, &ParseError{Bank: khName, Reason: "no trailing amount"}
	}
	amount, err := CleanAmount(amountStr)
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(rest[len(m[0]):])
	tx := Transaction{
		BookingDate: booking,
		ValueDate:   value,
		Currency:    "HUF",
		Description: desc,
		Raw:         map[string]any{"header": header},
	}
	tx.Type = khClassify(desc, amount.IsNegative())
	tx.Amount = normalizeSign(amount, tx.Type)

	// Continuation lines: a bare name first, then the counterparty account
	// number, then optional labeled details.
	for i, line := range block[1:] {
		if ref, ok := labelValue(line, "Közlemény"); ok {
			tx.Reference = ref
			continue
		}
		if khAccountLine.MatchString(line) {
			if tx.IsDebitType() {
				tx.BeneficiaryAccountNumber = CleanAccountNumber(line)
			} else {
				tx.PayerAccountNumber = CleanAccountNumber(line)
			}
			continue
		}
		if _, _, isLabel := splitLabel(line); isLabel {
			tx.Raw[strings.SplitN(line, ":", 2)[0]] = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			continue
		}
		name := line
		// Re-join a wrapped name from the following bare line.
		if i+2 < len(block) {
			next := block[i+2]
			if _, _, isLabel := splitLabel(next); !isLabel && !khAccountLine.MatchString(next) {
				name = JoinWrappedLine(name, next)
			}
		}
		if tx.IsDebitType() && tx.BeneficiaryName == "" {
			tx.BeneficiaryName = name
		} else if !tx.IsDebitType() && tx.PayerName == "" {
			tx.PayerName = name
		}
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}

// IsDebitType reports whether the normalized type is debit-flavored. Used
// before the amount sign is final.
func (t *Transaction) IsDebitType() bool {
	_, ok := debitFlavored[t.Type]
	return ok
}

func khClassify(desc string, negative bool) TransactionType {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "azonnali") && negative:
		return TypeAFRDebit
	case strings.Contains(d, "azonnali"):
		return TypeAFRCredit
	case strings.Contains(d, "kártya") || strings.Contains(d, "vásárlás"):
		return TypePOSPurchase
	case strings.Contains(d, "díj") || strings.Contains(d, "jutalék") || strings.Contains(d, "költség"):
		return TypeBankFee
	case strings.Contains(d, "kamat") && negative:
		return TypeInterestDebit
	case strings.Contains(d, "kamat"):
		return TypeInterestCredit
	case negative:
		return TypeTransferDebit
	default:
		return TypeTransferCredit
	}
}

// fixClosingBalance distrusts an implausibly large extracted closing balance
// and recomputes it: summary totals first, the parsed transactions when the
// summary is missing.
func (a *KHAdapter) fixClosingBalance(meta *StatementMetadata, creditTotal, debitTotal *decimal.Decimal, txs []Transaction) {
	if meta.OpeningBalance == nil {
		return
	}
	if meta.ClosingBalance != nil && meta.ClosingBalance.Abs().LessThan(khPlausibleBalance) {
		return
	}
	credits, debits := decimal.Zero, decimal.Zero
	if creditTotal != nil && debitTotal != nil {
		credits, debits = *creditTotal, *debitTotal
	} else {
		for _, tx := range txs {
			if tx.Amount.IsNegative() {
				debits = debits.Add(tx.Amount.Abs())
			} else {
				credits = credits.Add(tx.Amount)
			}
		}
	}
	closing := meta.OpeningBalance.Add(credits).Sub(debits)
	meta.ClosingBalance = &closing
}
