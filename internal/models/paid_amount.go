package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/payrelay/internal/utils"
)

// PaidAmount is an amount reported back by the gateway. Unlike Amount it is
// not limited to two fraction digits or to int64: whatever precision a
// verified result carries is forwarded as is. A digit-only string is read as
// minor units, so "10000" and 100.00 normalize to the same value.
//
// The value is held as its normalized decimal text with at least two
// fraction digits ("100.00", "100.125").
type PaidAmount struct {
	text string
}

// ParsePaidAmount parses a major-unit decimal string.
func ParsePaidAmount(s string) (PaidAmount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return PaidAmount{}, fmt.Errorf("%w: %q is not a number", utils.ErrInvalidAmount, s)
	}
	return newPaidAmount(d), nil
}

func newPaidAmount(d decimal.Decimal) PaidAmount {
	places := int32(amountScale)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return PaidAmount{text: d.StringFixed(places)}
}

// IsZero reports whether no amount was present.
func (p PaidAmount) IsZero() bool { return p.text == "" }

// Decimal returns the value in major units.
func (p PaidAmount) Decimal() decimal.Decimal {
	if p.text == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(p.text)
}

// String formats the amount in major units.
func (p PaidAmount) String() string {
	if p.text == "" {
		return "0.00"
	}
	return p.text
}

// MarshalJSON implements json.Marshaler. The amount is always written as a
// JSON number in major units.
func (p PaidAmount) MarshalJSON() ([]byte, error) {
	if p.text == "" {
		return []byte("null"), nil
	}
	return []byte(p.text), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PaidAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = PaidAmount{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if isDigits(s) {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", utils.ErrInvalidAmount, s)
			}
			*p = newPaidAmount(d.Shift(-amountScale))
			return nil
		}
	}
	v, err := ParsePaidAmount(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
