package bank

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"time"

	"github.com/shopspring/decimal"
)

var nonAlphanumeric = regexp.MustCompile(`[^0-9A-Za-z]`)

// CleanAmount parses the amount conventions the supported banks emit:
// space-thousands ("4 675 505"), European decimal comma ("1.234,56") and
// US decimal point ("10,260.56"). The sign is preserved.
func CleanAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(s, "Ft")
	s = strings.TrimSuffix(s, "HUF")
	if s == "" || s == "-" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// European: dot-thousands, comma-decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: comma-thousands, dot-decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// A single comma followed by at most two digits is a decimal comma,
		// anything else is thousands grouping.
		if strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",") <= 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if strings.Count(s, ".") == 1 && len(s)-strings.Index(s, ".") <= 3 {
			break // already dot-decimal
		}
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// CleanAccountNumber strips whitespace and separators from account numbers
// and IBANs and uppercases them, so representations from different banks
// compare equal.
func CleanAccountNumber(s string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(s, ""))
}

var dateLayouts = []string{
	"2006.01.02.",
	"2006.01.02",
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate tries the date layouts seen across the supported statements.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// JoinWrappedLine rejoins a counterparty name wrapped across PDF lines.
// A continuation starting with a lowercase letter is a word split mid-line
// and is glued without a space; a trailing hyphen on the previous line means
// a hyphenated word was broken and the hyphen is dropped.
func JoinWrappedLine(prev, next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return prev
	}
	if strings.HasSuffix(prev, "-") {
		return strings.TrimSuffix(prev, "-") + next
	}
	r := []rune(next)[0]
	if unicode.IsLower(r) {
		return prev + next
	}
	return prev + " " + next
}

// spacedAmountPattern matches a magnitude with space-grouped thousands and
// an optional decimal comma at the end of a line, e.g. "4 675 505" or
// "-229 125,50". Small amounts with no grouping also match.
var spacedAmountPattern = regexp.MustCompile(`-?\d{1,3}(?: \d{3})*(?:,\d{1,2})?$`)

// TrailingAmount returns the space-thousands amount terminating the line and
// the line with the amount cut off. ok is false when the line does not end
// with a plausible amount.
func TrailingAmount(line string) (amount, rest string, ok bool) {
	line = strings.TrimRight(line, " ")
	loc := spacedAmountPattern.FindStringIndex(line)
	if loc == nil {
		return "", line, false
	}
	// The token before the amount must be a separator, not more digits.
	if loc[0] > 0 && line[loc[0]-1] != ' ' {
		return "", line, false
	}
	return line[loc[0]:], strings.TrimRight(line[:loc[0]], " "), true
}

// DigitsOnly keeps only the 0-9 characters of s. Used for tax-number
// substring matching against free-text references.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
