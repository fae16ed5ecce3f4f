package bank

import (
	"regexp"
	"strings"

	"bank-reconciliation-backend/internal/extractor"
)

// GRÁNIT Bank statement PDFs list transactions as multi-line blocks. The
// header line of a block starts with the booking date and ends with the
// space-thousands amount:
//
//	2025.01.14 AFR jóváírás bankon kívül 4 675 505
//	Fizetési azonosító: J0057M8Y6XGLKAAC
//	Kedvezményezett neve: IT Cardigan Kft.
//	Közlemény: Invoice 2025-000052
//
// Detail lines up to the next header belong to the block. A detail line can
// itself start with a date (value-date and fee sub-lines), so a header is
// only a line that also ends with an amount and carries no detail label.
const (
	granitCode = "GRANIT"
	granitName = "GRÁNIT Bank"
	granitBIC  = "GNBAHUHB"
)

type GranitAdapter struct{}

func NewGranitAdapter() *GranitAdapter { return &GranitAdapter{} }

func (a *GranitAdapter) Code() string { return granitCode }
func (a *GranitAdapter) Name() string { return granitName }
func (a *GranitAdapter) BIC() string  { return granitBIC }

var granitDatePrefix = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}\s`)

// Detail-field labels that disqualify a line from being a block header even
// when it starts with a date and ends with an amount.
var granitDetailLabels = []string{
	"Értéknap", "Jutalék", "Kártyaszám", "Díjak", "Árfolyam",
}

func (a *GranitAdapter) Detect(data []byte, filename string) bool {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return false
	}
	page, err := extractor.FirstPage(data)
	if err != nil {
		return false
	}
	return strings.Contains(page, "GRÁNIT") || strings.Contains(page, "GRANIT") ||
		strings.Contains(page, granitBIC)
}

func (a *GranitAdapter) Parse(data []byte) (*ParseResult, error) {
	pages, err := extractor.Pages(data)
	if err != nil {
		return nil, &StatementParseError{Bank: granitName, Reason: "text extraction failed", Err: err}
	}
	return a.parseText(strings.Join(pages, "\n"))
}

func (a *GranitAdapter) parseText(text string) (*ParseResult, error) {
	lines := splitLines(text)

	meta := &StatementMetadata{
		BankCode: granitCode,
		BankName: granitName,
		BankBIC:  granitBIC,
		Raw:      map[string]any{},
	}
	for _, line := range lines {
		if v, ok := labelValue(line, "Számlaszám"); ok {
			meta.AccountNumber = CleanAccountNumber(v)
		}
		if v, ok := labelValue(line, "IBAN"); ok {
			meta.AccountIBAN = CleanAccountNumber(v)
		}
		if v, ok := labelValue(line, "Kivonat száma"); ok {
			meta.StatementNumber = v
		}
		if v, ok := labelValue(line, "Kivonat időszaka"); ok {
			meta.Raw["kivonat_idoszaka"] = v
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
	}
	if err := meta.Validate(); err != nil {
		return nil, &StatementParseError{Bank: granitName, Reason: err.Error(), Err: err}
	}

	result := &ParseResult{Metadata: meta}
	for blockNo, block := range segmentBlocks(lines, granitIsHeader) {
		tx, err := a.parseBlock(block)
		if err != nil {
			result.Skipped = append(result.Skipped, ParseError{
				Bank: granitName, Block: blockNo, Reason: err.Error(), Err: err,
			})
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}
	return result, nil
}

// granitIsHeader decides whether a line opens a new transaction block.
func granitIsHeader(line string) bool {
	if !granitDatePrefix.MatchString(line) {
		return false
	}
	for _, label := range granitDetailLabels {
		if strings.Contains(line, label) {
			return false
		}
	}
	_, _, ok := TrailingAmount(line)
	return ok
}

func (a *GranitAdapter) parseBlock(block []string) (*Transaction, error) {
	header := block[0]
	amountStr, rest, _ := TrailingAmount(header)

	amount, err := CleanAmount(amountStr)
	if err != nil {
		return nil, err
	}
	booking, err := ParseDate(header[:10])
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(rest[10:])
	tx := Transaction{
		BookingDate: booking,
		ValueDate:   booking,
		Currency:    "HUF",
		Description: desc,
		Raw:         map[string]any{"header": header},
	}
	tx.Type = granitClassify(desc, amount.IsNegative())
	tx.Amount = normalizeSign(amount, tx.Type)

	lastNameField := (*string)(nil)
	for _, line := range block[1:] {
		label, value, ok := splitLabel(line)
		if !ok {
			// A label-less line continues the previous wrapped name.
			if lastNameField != nil {
				*lastNameField = JoinWrappedLine(*lastNameField, line)
			}
			continue
		}
		lastNameField = nil
		tx.Raw[label] = value
		switch label {
		case "Fizetési azonosító":
			tx.PaymentID = value
		case "Tranzakció azonosító":
			tx.TransactionID = value
		case "Partnerek közti egyedi azonosító":
			tx.PartnerID = value
		case "Kedvezményezett neve":
			tx.BeneficiaryName = value
			lastNameField = &tx.BeneficiaryName
		case "Kedvezményezett számlaszáma":
			tx.BeneficiaryAccountNumber = CleanAccountNumber(value)
		case "Fizető fél neve":
			tx.PayerName = value
			lastNameField = &tx.PayerName
		case "Fizető fél számlaszáma":
			tx.PayerAccountNumber = CleanAccountNumber(value)
		case "Közlemény":
			tx.Reference = value
		case "Értéknap":
			if d, err := ParseDate(value); err == nil {
				tx.ValueDate = d
			}
		case "Jutalék":
			if d, err := CleanAmount(value); err == nil {
				fee := d.Abs()
				tx.FeeAmount = &fee
			}
		case "Kártyaszám":
			tx.CardNumber = value
		case "Elfogadóhely":
			tx.MerchantName = value
		}
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}

func granitClassify(desc string, negative bool) TransactionType {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "afr") && strings.Contains(d, "jóváírás"):
		return TypeAFRCredit
	case strings.Contains(d, "afr"):
		return TypeAFRDebit
	case strings.Contains(d, "kártya") || strings.Contains(d, "pos") || strings.Contains(d, "vásárlás"):
		return TypePOSPurchase
	case strings.Contains(d, "jutalék") || strings.Contains(d, "díj") || strings.Contains(d, "költség"):
		return TypeBankFee
	case strings.Contains(d, "kamat"):
		if negative {
			return TypeInterestDebit
		}
		return TypeInterestCredit
	case strings.Contains(d, "jóváírás"):
		return TypeTransferCredit
	case strings.Contains(d, "átutalás") || strings.Contains(d, "terhelés"):
		return TypeTransferDebit
	default:
		return TypeOther
	}
}
