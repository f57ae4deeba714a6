// Package money parses and formats integer-cent amounts for a locale.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
)

// maxIntegerDigits keeps parsed amounts well inside int64 cents.
const maxIntegerDigits = 15

var hundred = decimal.NewFromInt(100)

// ParseAmount reads a locale-formatted amount into cents. Grouping separators
// and spaces are ignored; fractions beyond two digits are rounded half away
// from zero.
func ParseAmount(input string, loc Locale) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", domain.ErrInvalidAmountFormat)
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = stripSeparators(s, loc.Group)

	intPart, fracPart, hasFrac := strings.Cut(s, loc.Decimal)
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmountFormat, input)
	}
	if hasFrac && fracPart == "" {
		return 0, fmt.Errorf("%w: %q has no digits after the decimal separator", domain.ErrInvalidAmountFormat, input)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmountFormat, input)
	}
	if len(strings.TrimLeft(intPart, "0")) > maxIntegerDigits {
		return 0, fmt.Errorf("%w: %q is too large", domain.ErrInvalidAmountFormat, input)
	}

	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		fracPart = "0"
	}

	d, err := decimal.NewFromString(intPart + "." + fracPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidAmountFormat, err)
	}

	cents := d.Mul(hundred).Round(0).IntPart()
	if negative {
		cents = -cents
	}
	return cents, nil
}

// FormatAmount renders cents with the locale's separators and exactly two
// fraction digits. ParseAmount(FormatAmount(c, l), l) == c for every c.
func FormatAmount(cents int64, loc Locale) string {
	var b strings.Builder

	var abs uint64
	if cents < 0 {
		b.WriteByte('-')
		abs = uint64(-(cents + 1)) + 1
	} else {
		abs = uint64(cents)
	}

	writeGrouped(&b, abs/100, loc.Group)
	b.WriteString(loc.Decimal)
	fmt.Fprintf(&b, "%02d", abs%100)
	return b.String()
}

// Normalize re-renders input in the canonical form for loc.
func Normalize(input string, loc Locale) (string, error) {
	cents, err := ParseAmount(input, loc)
	if err != nil {
		return "", err
	}
	return FormatAmount(cents, loc), nil
}

func writeGrouped(b *strings.Builder, n uint64, group string) {
	digits := fmt.Sprintf("%d", n)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(group)
		b.WriteString(digits[i : i+3])
	}
}

func stripSeparators(s, group string) string {
	if group != "" {
		s = strings.ReplaceAll(s, group, "")
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
