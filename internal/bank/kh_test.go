package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const khStatementText = `K&H Bank Zrt.
Számlaszám: 10401000-50526583-00000000
Kivonat sorszáma: 2025/01
Kivonat időszaka: 2025.01.01 - 2025.01.31
Nyitó egyenleg: 1 000 000
2025.01.14 2025.01.15 átutalás forintban -229 125
IT Cardigan Kft.
10401000-12345678-00000000
Közlemény: 2025-000052
2025.01.20 2025.01.20 azonnali átutalás jóváírása 500 000
Vevő Partner
Kft.
Terhelések összesen: 229 125
Jóváírások összesen: 500 000
Záró egyenleg: 99 999 999 999 999 999
`

func TestKHParseText(t *testing.T) {
	result, err := NewKHAdapter().parseText(khStatementText)
	require.NoError(t, err)

	meta := result.Metadata
	assert.Equal(t, "KH", meta.BankCode)
	assert.Equal(t, "104010005052658300000000", meta.AccountNumber)
	assert.Equal(t, "2025/01", meta.StatementNumber)

	require.Len(t, result.Transactions, 2)

	debit := result.Transactions[0]
	assert.Equal(t, TypeTransferDebit, debit.Type)
	assert.Equal(t, "-229125", debit.Amount.String())
	assert.Equal(t, "2025-01-14", debit.BookingDate.Format("2006-01-02"))
	assert.Equal(t, "2025-01-15", debit.ValueDate.Format("2006-01-02"))
	assert.Equal(t, "átutalás forintban", debit.Description)
	assert.Equal(t, "IT Cardigan Kft.", debit.BeneficiaryName)
	assert.Equal(t, "104010001234567800000000", debit.BeneficiaryAccountNumber)
	assert.Equal(t, "2025-000052", debit.Reference)

	credit := result.Transactions[1]
	assert.Equal(t, TypeAFRCredit, credit.Type)
	assert.Equal(t, "500000", credit.Amount.String())
	assert.Equal(t, "Vevő Partner Kft.", credit.PayerName, "wrapped name rejoined")
}

// An impossibly large extracted closing balance is replaced with
// opening + credits - debits from the summary totals.
func TestKHClosingBalanceRecompute(t *testing.T) {
	result, err := NewKHAdapter().parseText(khStatementText)
	require.NoError(t, err)

	require.NotNil(t, result.Metadata.ClosingBalance)
	assert.Equal(t, "1270875", result.Metadata.ClosingBalance.String())
}

func TestKHClosingBalanceKeptWhenPlausible(t *testing.T) {
	text := `Számlaszám: 10401000-50526583-00000000
Kivonat időszaka: 2025.01.01 - 2025.01.31
Nyitó egyenleg: 1 000 000
Záró egyenleg: 1 270 875
`
	result, err := NewKHAdapter().parseText(text)
	require.NoError(t, err)
	require.NotNil(t, result.Metadata.ClosingBalance)
	assert.Equal(t, "1270875", result.Metadata.ClosingBalance.String())
}

func TestKHRecomputeFromTransactionsWithoutSummary(t *testing.T) {
	text := `Számlaszám: 10401000-50526583-00000000
Kivonat időszaka: 2025.01.01 - 2025.01.31
Nyitó egyenleg: 100 000
Záró egyenleg: 88 888 888 888 888 888
2025.01.10 2025.01.10 átutalás forintban -25 000
Partner Kft.
`
	result, err := NewKHAdapter().parseText(text)
	require.NoError(t, err)
	require.NotNil(t, result.Metadata.ClosingBalance)
	assert.Equal(t, "75000", result.Metadata.ClosingBalance.String())
}

func TestKHDetectRejectsNonPDF(t *testing.T) {
	assert.False(t, NewKHAdapter().Detect([]byte("K&H"), "statement.xml"))
}
