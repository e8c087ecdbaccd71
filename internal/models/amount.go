package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/payrelay/internal/utils"
)

// amountScale is the number of fraction digits carried by every Amount.
const amountScale = 2

// Amount is a monetary value held as a scaled integer of minor units
// (100.00 is 10000). Two wire forms exist and both decode to the same value:
//
//   - decimal: a JSON number with exactly two fraction digits, 100.00
//   - minor:   a JSON string of digits in minor units, "10000" or "000000010000"
//
// The form an Amount was decoded from (or built for) is kept so that
// re-encoding reproduces it.
type Amount struct {
	minor  int64
	scaled bool
}

// NewAmount parses a major-unit decimal string such as "100", "100.5" or
// "100.00". The value must be positive and carry at most two fraction digits.
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a number", utils.ErrInvalidAmount, s)
	}
	return amountFromDecimal(d)
}

func amountFromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.IsPositive() {
		return Amount{}, fmt.Errorf("%w: must be positive", utils.ErrInvalidAmount)
	}
	if !d.Equal(d.Round(amountScale)) {
		return Amount{}, fmt.Errorf("%w: more than %d fraction digits", utils.ErrInvalidAmount, amountScale)
	}
	shifted := d.Shift(amountScale)
	if shifted.GreaterThan(decimal.NewFromInt(maxMinor)) {
		return Amount{}, fmt.Errorf("%w: out of range", utils.ErrInvalidAmount)
	}
	return Amount{minor: shifted.IntPart()}, nil
}

const maxMinor = 1<<62 - 1

// Minor returns the value in minor units.
func (a Amount) Minor() int64 { return a.minor }

// Decimal returns the value in major units.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(a.minor, -amountScale) }

// AsMinor returns a copy that encodes as a minor-unit string.
func (a Amount) AsMinor() Amount { return Amount{minor: a.minor, scaled: true} }

// AsDecimal returns a copy that encodes as a two-digit JSON number.
func (a Amount) AsDecimal() Amount { return Amount{minor: a.minor} }

// String formats the amount in major units with two fraction digits.
func (a Amount) String() string { return a.Decimal().StringFixed(amountScale) }

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.scaled {
		return []byte(`"` + strconv.FormatInt(a.minor, 10) + `"`), nil
	}
	return []byte(a.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. A digit-only string is read as
// minor units; any other number or numeric string is read as major units.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if isDigits(s) {
			minor, err := strconv.ParseInt(s, 10, 64)
			if err != nil || minor > maxMinor {
				return fmt.Errorf("%w: %q out of range", utils.ErrInvalidAmount, s)
			}
			*a = Amount{minor: minor, scaled: true}
			return nil
		}
		return a.setDecimal(s)
	}
	return a.setDecimal(string(b))
}

func (a *Amount) setDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", utils.ErrInvalidAmount, s)
	}
	v, err := amountFromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
