package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/money"
)

// Amount is an integer-cent value that travels as a decimal string such as
// "1234.56". Requests may also send a bare JSON number in major units.
type Amount int64

// MarshalJSON renders the amount with exactly two fraction digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.New(int64(a), -2).StringFixed(2))
}

// UnmarshalJSON parses "12.34", "1,234.50" or 12.34.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}

	cents, err := money.ParseAmount(s, money.EnUS)
	if err != nil {
		return err
	}
	*a = Amount(cents)
	return nil
}

// Cents returns the amount as int64 cents.
func (a Amount) Cents() int64 {
	return int64(a)
}

// CentsPtr converts an optional amount.
func (a *Amount) CentsPtr() *int64 {
	if a == nil {
		return nil
	}
	c := int64(*a)
	return &c
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidPeriodRange, s)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}
