// Package calculator implements the group settlement engine.
//
// Everything here is a pure function over in-memory snapshots: balances are
// derived from expenses and settlements, then a greedy matching turns them
// into a short list of suggested transfers. Amounts are integer cents, so the
// conservation law (balances sum to zero) holds exactly for consistent input.
package calculator

import (
	"slices"
	"strings"

	"github.com/mmynk/spendwise/internal/money"
)

// Share is the portion of an expense attributed to one member.
type Share struct {
	MemberID string
	Amount   money.Amount
}

// Expense represents an expense with the minimal information needed for balance calculations.
type Expense struct {
	ID          string
	Description string
	Category    string
	PaidBy      string
	Amount      money.Amount
	Shares      []Share
}

// Settlement represents a recorded payment with the minimal information needed for balance calculations.
type Settlement struct {
	From     string // Who paid (debtor settling up)
	To       string // Who received (creditor being paid)
	Amount   money.Amount
	Note     string
	Category string
}

// MemberBalance is one member's position: everything credited to them
// (amounts they fronted or paid back) and everything debited (their shares
// and payments received).
type MemberBalance struct {
	MemberID string
	Paid     money.Amount
	Owed     money.Amount
}

// Net returns Paid - Owed. Positive = owed money, negative = owes money.
func (m MemberBalance) Net() money.Amount {
	return m.Paid - m.Owed
}

// Balances maps member ID to signed net balance.
type Balances map[string]money.Amount

// Total returns the sum of all balances. It is zero for consistent input;
// anything else is drift from shares that do not add up to their expense.
func (b Balances) Total() money.Amount {
	var total money.Amount
	for _, v := range b {
		total += v
	}
	return total
}

// MemberIDs returns the member IDs in ascending order.
func (b Balances) MemberIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Settled reports whether every balance is exactly zero.
func (b Balances) Settled() bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ComputeLedger aggregates who paid what and who owes what.
//
// Algorithm:
//   - every listed member starts at zero
//   - for each expense: the payer is credited the full amount, each sharer is debited their share
//   - for each settlement: the payer is credited, the receiver is debited
//
// IDs referenced by expenses or settlements but missing from members are
// included as implicit members. The result is sorted by member ID.
func ComputeLedger(members []string, expenses []Expense, settlements []Settlement) []MemberBalance {
	ledger := make(map[string]*MemberBalance, len(members))
	entry := func(id string) *MemberBalance {
		mb, ok := ledger[id]
		if !ok {
			mb = &MemberBalance{MemberID: id}
			ledger[id] = mb
		}
		return mb
	}

	// Members without any activity still show up at zero
	for _, id := range members {
		entry(id)
	}

	for _, e := range expenses {
		// Payer paid the full amount
		entry(e.PaidBy).Paid += e.Amount
		// Each sharer owes their share, the payer's own share included
		for _, s := range e.Shares {
			entry(s.MemberID).Owed += s.Amount
		}
	}

	for _, s := range settlements {
		// Payer's balance improves (they paid down their debt)
		entry(s.From).Paid += s.Amount
		// Receiver's claim shrinks by what they received
		entry(s.To).Owed += s.Amount
	}

	// Sort by ID so output is deterministic
	result := make([]MemberBalance, 0, len(ledger))
	for _, mb := range ledger {
		result = append(result, *mb)
	}
	slices.SortFunc(result, func(a, b MemberBalance) int {
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return result
}

// ComputeBalances derives each member's signed net balance from the
// expenses and settlements in scope.
func ComputeBalances(members []string, expenses []Expense, settlements []Settlement) Balances {
	return BalancesFromLedger(ComputeLedger(members, expenses, settlements))
}

// BalancesFromLedger collapses a ledger to net balances.
func BalancesFromLedger(ledger []MemberBalance) Balances {
	b := make(Balances, len(ledger))
	for _, mb := range ledger {
		b[mb.MemberID] = mb.Net()
	}
	return b
}
