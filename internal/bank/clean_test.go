package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4 675 505", "4675505"},
		{"-229 125", "-229125"},
		{"10,260.50", "10260.5"},
		{"1.234,56", "1234.56"},
		{"-551.30", "-551.3"},
		{"125", "125"},
		{"1 000 000 Ft", "1000000"},
		{"2 500,75", "2500.75"},
		{"1,234,567", "1234567"},
		{"1.234.567", "1234567"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got, err := CleanAmount(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.in)
	}
}

func TestCleanAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "-", "abc", "12a34"} {
		_, err := CleanAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestCleanAccountNumber(t *testing.T) {
	assert.Equal(t, "HU09121000111042603000000000", CleanAccountNumber("HU09 1210 0011 1042 6030 0000 0000"))
	assert.Equal(t, "104010005052658300000000", CleanAccountNumber("10401000-50526583-00000000"))
	assert.Equal(t, "", CleanAccountNumber("  "))
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025.01.14", "2025-01-14"},
		{"2025.01.14.", "2025-01-14"},
		{"2025-01-14", "2025-01-14"},
		{"14/01/2025", "2025-01-14"},
		{"14.01.2025", "2025-01-14"},
		{"2025-03-05 10:33:04", "2025-03-05"},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.Format("2006-01-02"), "input %q", tc.in)
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestJoinWrappedLine(t *testing.T) {
	assert.Equal(t, "Irodaszer Kft.", JoinWrappedLine("Irodaszer", "Kft."))
	assert.Equal(t, "Nagykereskedelmi", JoinWrappedLine("Nagykeres", "kedelmi"))
	assert.Equal(t, "BauTrade", JoinWrappedLine("Bau-", "Trade"))
	assert.Equal(t, "Valami", JoinWrappedLine("Valami", "  "))
}

func TestTrailingAmount(t *testing.T) {
	amount, rest, ok := TrailingAmount("2025.01.14 AFR jóváírás bankon kívül 4 675 505")
	require.True(t, ok)
	assert.Equal(t, "4 675 505", amount)
	assert.Equal(t, "2025.01.14 AFR jóváírás bankon kívül", rest)

	amount, _, ok = TrailingAmount("2025.01.14 2025.01.15 átutalás forintban -229 125")
	require.True(t, ok)
	assert.Equal(t, "-229 125", amount)

	amount, _, ok = TrailingAmount("Jutalék kivonat szerint 1 250,75")
	require.True(t, ok)
	assert.Equal(t, "1 250,75", amount)

	// A line ending in a date must not read the day as an amount.
	_, _, ok = TrailingAmount("Kivonat készült: 2025.01.31")
	assert.False(t, ok)

	_, _, ok = TrailingAmount("Közlemény: Invoice payment")
	assert.False(t, ok)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678242", DigitsOnly("12345678-2-42"))
	assert.Equal(t, "", DigitsOnly("no digits"))
}

func TestParsePeriod(t *testing.T) {
	from, to, err := parsePeriod("2025.01.01 - 2025.01.31")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", from.Format("2006-01-02"))
	assert.Equal(t, "2025-01-31", to.Format("2006-01-02"))

	_, _, err = parsePeriod("egész év")
	assert.Error(t, err)
}

func TestNormalizeSign(t *testing.T) {
	pos, _ := CleanAmount("1 000")
	assert.True(t, normalizeSign(pos, TypePOSPurchase).IsNegative())
	assert.True(t, normalizeSign(pos.Neg(), TypeAFRCredit).IsPositive())
	// OTHER keeps the source sign.
	assert.True(t, normalizeSign(pos.Neg(), TypeOther).IsNegative())
}

func TestSegmentBlocks(t *testing.T) {
	isHeader := func(line string) bool { return line == "H" }
	blocks := segmentBlocks([]string{"junk", "H", "a", "b", "H", "c"}, isHeader)
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"H", "a", "b"}, blocks[0])
	assert.Equal(t, []string{"H", "c"}, blocks[1])
}

func TestDebitFlavoredCoversAllDebitTypes(t *testing.T) {
	tx := Transaction{Type: TypeBankFee}
	assert.True(t, tx.IsDebitType())
	tx.Type = TypeAFRCredit
	assert.False(t, tx.IsDebitType())
}
