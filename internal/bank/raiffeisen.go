package bank

import (
	"regexp"
	"strings"

	"bank-reconciliation-backend/internal/extractor"
)

// Raiffeisen statement PDFs come out of text extraction with a systematic
// character corruption: the embedded font maps Hungarian accented letters to
// unrelated symbols (`£` where `á` should be, `©` for `é`, and so on). The
// label text is corrupted too ("Fizet£ f©l" instead of "Fizető fél"), so
// every extracted string is run through the repair table before any pattern
// matching. Apart from the repair pass the layout is GRÁNIT-style blocks.
const (
	raiffeisenCode = "RAIFFEISEN"
	raiffeisenName = "Raiffeisen Bank"
	raiffeisenBIC  = "UBRTHUHB"
)

type RaiffeisenAdapter struct{}

func NewRaiffeisenAdapter() *RaiffeisenAdapter { return &RaiffeisenAdapter{} }

func (a *RaiffeisenAdapter) Code() string { return raiffeisenCode }
func (a *RaiffeisenAdapter) Name() string { return raiffeisenName }
func (a *RaiffeisenAdapter) BIC() string  { return raiffeisenBIC }

// raiffeisenRepair maps the corrupted extraction output back to the intended
// Hungarian characters. The table is fixed per font, observed from real
// statements.
var raiffeisenRepair = strings.NewReplacer(
	"£", "á", "©", "é", "¡", "í", "¢", "ó", "¤", "ö", "¥", "ő", "§", "ú", "¨", "ü", "ª", "ű",
	"¿", "Á", "®", "É", "¦", "Í", "«", "Ó", "¬", "Ö", "°", "Ő", "±", "Ú", "²", "Ü", "³", "Ű",
)

var raiffeisenDatePrefix = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}\s`)

var raiffeisenDetailLabels = []string{
	"Értéknap", "Jutalék", "Kártyaszám", "Árfolyam",
}

func (a *RaiffeisenAdapter) Detect(data []byte, filename string) bool {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return false
	}
	page, err := extractor.FirstPage(data)
	if err != nil {
		return false
	}
	// The bank name is plain ASCII and survives the corruption.
	return strings.Contains(strings.ToUpper(page), "RAIFFEISEN") ||
		strings.Contains(page, raiffeisenBIC)
}

func (a *RaiffeisenAdapter) Parse(data []byte) (*ParseResult, error) {
	pages, err := extractor.Pages(data)
	if err != nil {
		return nil, &StatementParseError{Bank: raiffeisenName, Reason: "text extraction failed", Err: err}
	}
	text := raiffeisenRepair.Replace(strings.Join(pages, "\n"))
	return a.parseText(text)
}

func (a *RaiffeisenAdapter) parseText(text string) (*ParseResult, error) {
	lines := splitLines(text)

	meta := &StatementMetadata{
		BankCode: raiffeisenCode,
		BankName: raiffeisenName,
		BankBIC:  raiffeisenBIC,
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
		if v, ok := labelValue(line, "Időszak"); ok {
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
		return nil, &StatementParseError{Bank: raiffeisenName, Reason: err.Error(), Err: err}
	}

	result := &ParseResult{Metadata: meta}
	for blockNo, block := range segmentBlocks(lines, raiffeisenIsHeader) {
		tx, err := a.parseBlock(block)
		if err != nil {
			result.Skipped = append(result.Skipped, ParseError{
				Bank: raiffeisenName, Block: blockNo, Reason: err.Error(), Err: err,
			})
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}
	return result, nil
}

func raiffeisenIsHeader(line string) bool {
	if !raiffeisenDatePrefix.MatchString(line) {
		return false
	}
	for _, label := range raiffeisenDetailLabels {
		if strings.Contains(line, label) {
			return false
		}
	}
	_, _, ok := TrailingAmount(line)
	return ok
}

func (a *RaiffeisenAdapter) parseBlock(block []string) (*Transaction, error) {
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
	tx.Type = raiffeisenClassify(desc, amount.IsNegative())
	tx.Amount = normalizeSign(amount, tx.Type)

	lastNameField := (*string)(nil)
	for _, line := range block[1:] {
		label, value, ok := splitLabel(line)
		if !ok {
			if lastNameField != nil {
				*lastNameField = JoinWrappedLine(*lastNameField, line)
			}
			continue
		}
		lastNameField = nil
		tx.Raw[label] = value
		switch label {
		case "Fizető fél":
			tx.PayerName = value
			lastNameField = &tx.PayerName
		case "Fizető fél számlaszáma":
			tx.PayerAccountNumber = CleanAccountNumber(value)
		case "Kedvezményezett":
			tx.BeneficiaryName = value
			lastNameField = &tx.BeneficiaryName
		case "Kedvezményezett számlaszáma":
			tx.BeneficiaryAccountNumber = CleanAccountNumber(value)
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
		case "Tranzakció azonosító":
			tx.TransactionID = value
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

func raiffeisenClassify(desc string, negative bool) TransactionType {
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
	case negative || strings.Contains(d, "terhelés"):
		return TypeTransferDebit
	default:
		return TypeTransferCredit
	}
}
