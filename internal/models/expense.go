package models

import "github.com/mmynk/spendwise/internal/money"

// Expense is a payment one member made on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a short label, e.g. "Dinner at Mario's".
	Description string

	// Amount is the total paid. Always positive.
	Amount money.Amount

	// Category is a free-form label such as "Food" or "Travel".
	Category string

	// PaidBy is the member who paid the full amount.
	PaidBy string

	// Shares says how much of Amount each member owes. Shares sum to Amount.
	Shares []Share

	// Date is the Unix timestamp the expense happened at (defaults to CreatedAt).
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Share is the portion of an expense one member owes.
type Share struct {
	MemberID string
	Amount   money.Amount
}

// Involves reports whether the member paid for or shares in the expense.
func (e *Expense) Involves(memberID string) bool {
	if e.PaidBy == memberID {
		return true
	}
	for _, s := range e.Shares {
		if s.MemberID == memberID {
			return true
		}
	}
	return false
}
