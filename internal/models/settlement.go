package models

import "github.com/mmynk/spendwise/internal/money"

// Settlement represents a payment between group members to clear debts.
// Settlements are immutable once recorded.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount. Always positive.
	Amount money.Amount

	// Note is an optional description for the settlement.
	Note string

	// Category is set when the settlement was made from a category view.
	// Empty means it adjusts the overall balances only.
	Category string

	// SettledAt is the Unix timestamp when the settlement was recorded.
	SettledAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string
}
