// Package money provides a fixed-point amount type for currency values.
//
// Amounts are stored as a signed count of minor units (cents), so sums and
// differences are exact. Parsing accepts both dot (12.34) and comma (12,34)
// decimal separators and never rounds: digits past the cents must be zero.
package money

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a monetary value in cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromCents returns the amount for a number of cents.
func FromCents(c int64) Amount { return Amount(c) }

// Cents returns the raw number of cents.
func (a Amount) Cents() int64 { return int64(a) }

// Float returns the value in major units. Use it for display only.
func (a Amount) Float() float64 { return float64(a) / 100.0 }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// String formats the amount with exactly two decimals, e.g. "-12.05".
func (a Amount) String() string {
	sign := ""
	c := int64(a)
	if c < 0 {
		sign = "-"
		c = -c
	}
	frac := c % 100
	s := sign + strconv.FormatInt(c/100, 10) + "."
	if frac < 10 {
		s += "0"
	}
	return s + strconv.FormatInt(frac, 10)
}

// Split divides the amount into n parts that sum back to the amount.
// The remainder cents go one each to the first parts.
func (a Amount) Split(n int) []Amount {
	if n <= 0 {
		return nil
	}
	base := a / Amount(n)
	rem := a % Amount(n)
	parts := make([]Amount, n)
	for i := range parts {
		parts[i] = base
	}
	step := Amount(1)
	if rem < 0 {
		step = -1
		rem = -rem
	}
	for i := Amount(0); i < rem; i++ {
		parts[i] += step
	}
	return parts
}

// Parse converts a decimal string to an amount.
//
// Examples:
//
//	Parse("12.34")  -> 1234
//	Parse("12,34")  -> 1234
//	Parse("-0.5")   -> -50
//	Parse("12.340") -> 1234
//	Parse("12.345") -> ErrInvalidAmount (below one cent)
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv >= maxSafe {
		return 0, ErrInvalidAmount
	}
	// Trailing zeros are fine; anything else past the cents would be lost.
	if len(fracPart) > 2 {
		if strings.Trim(fracPart[2:], "0") != "" {
			return 0, ErrInvalidAmount
		}
		fracPart = fracPart[:2]
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
		}
	}
	cents := iv*100 + frac
	if negative {
		cents = -cents
	}
	return Amount(cents), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic("money: " + err.Error() + ": " + s)
	}
	return a
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ErrInvalidAmount
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
