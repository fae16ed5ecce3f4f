package bank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revolutHeader = "Date started (UTC),Date completed (UTC),ID,Type,State,Description,Reference,Payer,Card number,Orig currency,Orig amount,Payment currency,Amount,Total amount,Exchange rate,Fee,Fee currency,Account,Beneficiary account number,Beneficiary IBAN,Beneficiary BIC,MCC"

func revolutCSV(rows ...string) []byte {
	return []byte(revolutHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func TestRevolutParse(t *testing.T) {
	data := revolutCSV(
		"2025-03-05 10:33:04,2025-03-06 01:00:00,tx1,CARD_PAYMENT,COMPLETED,Amazon EU,order 123,,516861******1234,EUR,-1.42,HUF,-545.80,-551.30,388.24,5.50,HUF,Fő számla,,,,5999",
		"2025-03-07 08:00:00,2025-03-07 08:00:01,tx2,CARD_PAYMENT,DECLINED,Rejected merchant,,,,,,HUF,-100.00,-100.00,,,,Fő számla,,,,5999",
		"2025-03-10 09:15:00,2025-03-10 09:15:30,tx3,TOPUP,COMPLETED,Payment from IT Cardigan Kft.,feltöltés,IT Cardigan Kft.,,,,HUF,250000,250000,,0,HUF,Fő számla,,,,",
		"2025-03-12 14:00:00,2025-03-12 14:00:10,tx4,TRANSFER,COMPLETED,To supplier,2025-000061,,,,,HUF,-120000,-120000,,0,HUF,Fő számla,12345678-87654321,HU42117730161111101800000000,OTPVHUHB,",
	)

	result, err := NewRevolutAdapter().Parse(data)
	require.NoError(t, err)

	meta := result.Metadata
	assert.Equal(t, "REVOLUT", meta.BankCode)
	assert.Equal(t, "FSZMLA", meta.AccountNumber, "account label reduced to its alphanumerics")
	assert.Equal(t, "2025-03-05", meta.PeriodFrom.Format("2006-01-02"), "period derived from booking dates")
	assert.Equal(t, "2025-03-12", meta.PeriodTo.Format("2006-01-02"))

	// The DECLINED row is dropped entirely, not even counted as skipped.
	require.Len(t, result.Transactions, 3)
	assert.Empty(t, result.Skipped)

	card := result.Transactions[0]
	assert.Equal(t, TypePOSPurchase, card.Type)
	assert.Equal(t, "-551.3", card.Amount.String(), "Total amount wins over Amount")
	assert.Equal(t, "HUF", card.Currency)
	assert.Equal(t, "2025-03-05", card.BookingDate.Format("2006-01-02"))
	assert.Equal(t, "2025-03-06", card.ValueDate.Format("2006-01-02"))
	assert.Equal(t, "Amazon EU", card.MerchantName)
	require.NotNil(t, card.FeeAmount)
	assert.Equal(t, "5.5", card.FeeAmount.String())
	assert.Equal(t, "EUR", card.OriginalCurrency)
	require.NotNil(t, card.OriginalAmount)
	assert.Equal(t, "-1.42", card.OriginalAmount.String())
	require.NotNil(t, card.ExchangeRate)
	assert.Equal(t, "388.24", card.ExchangeRate.String())

	topup := result.Transactions[1]
	assert.Equal(t, TypeTransferCredit, topup.Type)
	assert.Equal(t, "250000", topup.Amount.String())
	assert.Equal(t, "IT Cardigan Kft.", topup.PayerName)
	assert.Nil(t, topup.FeeAmount, "zero fee is not recorded")

	transfer := result.Transactions[2]
	assert.Equal(t, TypeTransferDebit, transfer.Type)
	assert.Equal(t, "2025-000061", transfer.Reference)
	assert.Equal(t, "1234567887654321", transfer.BeneficiaryAccountNumber)
	assert.Equal(t, "HU42117730161111101800000000", transfer.BeneficiaryIBAN)
	assert.Equal(t, "OTPVHUHB", transfer.BeneficiaryBIC)
}

func TestRevolutClassify(t *testing.T) {
	assert.Equal(t, TypePOSPurchase, revolutClassify("CARD_PAYMENT", true))
	assert.Equal(t, TypeOther, revolutClassify("CARD_REFUND", false))
	assert.Equal(t, TypeTransferDebit, revolutClassify("TRANSFER", true))
	assert.Equal(t, TypeTransferCredit, revolutClassify("TRANSFER", false))
	assert.Equal(t, TypeTransferCredit, revolutClassify("TOPUP", false))
	assert.Equal(t, TypeBankFee, revolutClassify("FEE", true))
	assert.Equal(t, TypeInterestCredit, revolutClassify("INTEREST", false))
	assert.Equal(t, TypeInterestDebit, revolutClassify("INTEREST", true))
	assert.Equal(t, TypeOther, revolutClassify("EXCHANGE", false))
}

func TestRevolutDetect(t *testing.T) {
	a := NewRevolutAdapter()
	assert.True(t, a.Detect(revolutCSV(), "account-statement.csv"))
	assert.False(t, a.Detect(revolutCSV(), "account-statement.pdf"), "extension gates the sniff")
	assert.False(t, a.Detect([]byte("Dátum,Összeg\n"), "export.csv"))
}

func TestRevolutMissingColumnIsFatal(t *testing.T) {
	data := []byte("Date started (UTC),State\n2025-03-05 10:33:04,COMPLETED\n")
	_, err := NewRevolutAdapter().Parse(data)
	require.Error(t, err)
	assert.IsType(t, &StatementParseError{}, err)
}

func TestRevolutEmptyStatementIsFatal(t *testing.T) {
	// Header only: no rows means no account number and no period.
	_, err := NewRevolutAdapter().Parse(revolutCSV())
	require.Error(t, err)
	assert.IsType(t, &StatementParseError{}, err)
}
