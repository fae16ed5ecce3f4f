package bank

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Helpers shared by the PDF adapters: label extraction, block segmentation
// and the sign/type normalization contract.

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// splitLabel splits "Label: value" detail lines. Lines without a colon, or
// with a colon deep inside free text, are not labels.
func splitLabel(line string) (label, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 40 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// labelValue returns the value of a specific "Label: value" line.
func labelValue(line, label string) (string, bool) {
	l, v, ok := splitLabel(line)
	if !ok || l != label {
		return "", false
	}
	return v, true
}

// parsePeriod parses "2025.01.01 - 2025.01.31" style period ranges.
func parsePeriod(v string) (from, to time.Time, err error) {
	parts := strings.SplitN(v, "-", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(v, "–", 2)
	}
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, &StatementParseError{Reason: "invalid period: " + v}
	}
	if from, err = ParseDate(strings.TrimSpace(parts[0])); err != nil {
		return
	}
	to, err = ParseDate(strings.TrimSpace(parts[1]))
	return
}

// segmentBlocks groups a flat line list into transaction blocks: each block
// is one header line plus every following line up to the next header. Lines
// before the first header (page furniture, metadata) are dropped.
func segmentBlocks(lines []string, isHeader func(string) bool) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range lines {
		if isHeader(line) {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

var debitFlavored = map[TransactionType]struct{}{
	TypeAFRDebit: {}, TypeTransferDebit: {}, TypePOSPurchase: {},
	TypeBankFee: {}, TypeInterestDebit: {},
}

// normalizeSign enforces the sign convention on banks that print unsigned
// magnitudes: debit-flavored types are always negative, credit types always
// positive. An explicit minus in the source wins for OTHER.
func normalizeSign(amount decimal.Decimal, typ TransactionType) decimal.Decimal {
	if _, debit := debitFlavored[typ]; debit {
		return amount.Abs().Neg()
	}
	switch typ {
	case TypeAFRCredit, TypeTransferCredit, TypeInterestCredit:
		return amount.Abs()
	}
	return amount
}
