package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/spendwise/internal/money"
)

var (
	ErrNoMembers       = errors.New("must have at least one member")
	ErrNonPositive     = errors.New("amount must be positive")
	ErrSharesMismatch  = errors.New("shares do not add up to the expense amount")
	ErrDuplicateMember = errors.New("member appears in more than one share")
)

// SplitEqual divides total equally among members, in the given order.
// Remainder cents go one each to the first members, so the shares always
// add up to total exactly.
func SplitEqual(total money.Amount, members []string) ([]Share, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if !total.IsPositive() {
		return nil, ErrNonPositive
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, m)
		}
		seen[m] = true
	}

	parts := total.Split(len(members))
	shares := make([]Share, len(members))
	for i, m := range members {
		shares[i] = Share{MemberID: m, Amount: parts[i]}
	}
	return shares, nil
}

// ValidateShares checks an explicit (unequal) split: at least one share,
// positive amounts, no member twice, and a sum within tolerance of total.
func ValidateShares(total money.Amount, shares []Share, tolerance money.Amount) error {
	if !total.IsPositive() {
		return ErrNonPositive
	}
	if len(shares) == 0 {
		return ErrNoMembers
	}

	seen := make(map[string]bool, len(shares))
	var sum money.Amount
	for _, s := range shares {
		if !s.Amount.IsPositive() {
			return fmt.Errorf("share for %s: %w", s.MemberID, ErrNonPositive)
		}
		if seen[s.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, s.MemberID)
		}
		seen[s.MemberID] = true
		sum += s.Amount
	}

	if (sum - total).Abs() > tolerance {
		return fmt.Errorf("%w: shares sum to %s, expense is %s", ErrSharesMismatch, sum, total)
	}
	return nil
}
