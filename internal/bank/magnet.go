package bank

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// MagNet exports a clean typed XML (root NetBankXML), by far the most
// reliable of the supported formats.
const (
	magnetCode = "MAGNET"
	magnetName = "MagNet Bank"
	magnetBIC  = "HBWEHUHB"
)

type MagnetAdapter struct{}

func NewMagnetAdapter() *MagnetAdapter { return &MagnetAdapter{} }

func (a *MagnetAdapter) Code() string { return magnetCode }
func (a *MagnetAdapter) Name() string { return magnetName }
func (a *MagnetAdapter) BIC() string  { return magnetBIC }

type magnetDocument struct {
	XMLName xml.Name     `xml:"NetBankXML"`
	Header  magnetHeader `xml:"Fejlec"`
	Items   []magnetItem `xml:"Tranzakciok>Tranzakcio"`
}

type magnetHeader struct {
	BankName        string `xml:"Banknev"`
	AccountNumber   string `xml:"Szamlaszam"`
	AccountIBAN     string `xml:"IBAN"`
	PeriodFrom      string `xml:"IdoszakTol"`
	PeriodTo        string `xml:"IdoszakIg"`
	StatementNumber string `xml:"Kivonatszam"`
	OpeningBalance  string `xml:"Nyitoegyenleg"`
	ClosingBalance  string `xml:"Zaroegyenleg"`
}

type magnetItem struct {
	Amount struct {
		Value    string `xml:",chardata"`
		Currency string `xml:"Devizanem,attr"`
	} `xml:"Osszeg"`
	BookingDate  string `xml:"Terhelesnap"`
	ValueDate    string `xml:"Esedekessegnap"`
	Reference    string `xml:"Kozlemeny"`
	Counterparty string `xml:"Ellenpartner"`
	CounterAcct  string `xml:"Ellenszamla"`
	Fee          string `xml:"Jutalekosszeg"`
	TypeCode     string `xml:"Tipus"`
	ID           string `xml:"Azonosito"`
	Extra        *struct {
		CardNumber string `xml:"Kartyaszam"`
		Merchant   string `xml:"Elfogadohely"`
		Location   string `xml:"Helyseg"`
	} `xml:"TranzakcioKiegeszito"`
}

func (a *MagnetAdapter) Detect(data []byte, filename string) bool {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	return bytes.Contains(head, []byte("<NetBankXML")) &&
		bytes.Contains(head, []byte("MagNet"))
}

func (a *MagnetAdapter) Parse(data []byte) (*ParseResult, error) {
	var doc magnetDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &StatementParseError{Bank: magnetName, Reason: "invalid XML", Err: err}
	}
	if !strings.Contains(doc.Header.BankName, "MagNet") {
		return nil, &StatementParseError{Bank: magnetName, Reason: "header does not identify MagNet Bank"}
	}

	meta := &StatementMetadata{
		BankCode:        magnetCode,
		BankName:        magnetName,
		BankBIC:         magnetBIC,
		AccountNumber:   CleanAccountNumber(doc.Header.AccountNumber),
		AccountIBAN:     CleanAccountNumber(doc.Header.AccountIBAN),
		StatementNumber: doc.Header.StatementNumber,
		Raw:             map[string]any{"banknev": doc.Header.BankName},
	}
	if d, err := ParseDate(doc.Header.PeriodFrom); err == nil {
		meta.PeriodFrom = d
	}
	if d, err := ParseDate(doc.Header.PeriodTo); err == nil {
		meta.PeriodTo = d
	}
	if d, err := CleanAmount(doc.Header.OpeningBalance); err == nil {
		meta.OpeningBalance = &d
	}
	if d, err := CleanAmount(doc.Header.ClosingBalance); err == nil {
		meta.ClosingBalance = &d
	}
	if err := meta.Validate(); err != nil {
		return nil, &StatementParseError{Bank: magnetName, Reason: err.Error(), Err: err}
	}

	result := &ParseResult{Metadata: meta}
	for i, item := range doc.Items {
		tx, err := a.parseItem(item)
		if err != nil {
			result.Skipped = append(result.Skipped, ParseError{
				Bank: magnetName, Block: i, Reason: err.Error(), Err: err,
			})
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}
	return result, nil
}

func (a *MagnetAdapter) parseItem(item magnetItem) (*Transaction, error) {
	amount, err := CleanAmount(item.Amount.Value)
	if err != nil {
		return nil, err
	}
	booking, err := ParseDate(item.BookingDate)
	if err != nil {
		return nil, err
	}
	value := booking
	if item.ValueDate != "" {
		if d, err := ParseDate(item.ValueDate); err == nil {
			value = d
		}
	}

	currency := item.Amount.Currency
	if currency == "" {
		currency = "HUF"
	}

	tx := Transaction{
		BookingDate:   booking,
		ValueDate:     value,
		Amount:        amount,
		Currency:      currency,
		Description:   item.TypeCode,
		Reference:     item.Reference,
		TypeCode:      item.TypeCode,
		TransactionID: item.ID,
		Raw: map[string]any{
			"tipus":        item.TypeCode,
			"ellenpartner": item.Counterparty,
		},
	}
	tx.Type = magnetClassify(item.TypeCode, amount.IsNegative())
	if tx.Amount.IsNegative() {
		tx.BeneficiaryName = item.Counterparty
		tx.BeneficiaryAccountNumber = CleanAccountNumber(item.CounterAcct)
	} else {
		tx.PayerName = item.Counterparty
		tx.PayerAccountNumber = CleanAccountNumber(item.CounterAcct)
	}
	if item.Fee != "" {
		if fee, err := CleanAmount(item.Fee); err == nil {
			abs := fee.Abs()
			tx.FeeAmount = &abs
		}
	}
	if item.Extra != nil {
		tx.CardNumber = item.Extra.CardNumber
		tx.MerchantName = item.Extra.Merchant
		tx.MerchantLocation = item.Extra.Location
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}

func magnetClassify(typeCode string, negative bool) TransactionType {
	t := strings.ToLower(typeCode)
	switch {
	case strings.Contains(t, "azonnali") && negative:
		return TypeAFRDebit
	case strings.Contains(t, "azonnali"):
		return TypeAFRCredit
	case strings.Contains(t, "kártya") || strings.Contains(t, "vásárlás"):
		return TypePOSPurchase
	case strings.Contains(t, "díj") || strings.Contains(t, "jutalék"):
		return TypeBankFee
	case strings.Contains(t, "kamat") && negative:
		return TypeInterestDebit
	case strings.Contains(t, "kamat"):
		return TypeInterestCredit
	case negative:
		return TypeTransferDebit
	default:
		return TypeTransferCredit
	}
}
