package calculator

import (
	"github.com/mmynk/spendwise/internal/money"
)

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Amount
}

// Residual is a balance left over after matching. It only appears when the
// input balances do not sum to zero.
type Residual struct {
	MemberID string
	Amount   money.Amount
}

// Plan is the output of SuggestSettlements.
type Plan struct {
	Transfers []Transfer
	Unmatched []Residual
}

// Balanced reports whether every balance was matched.
func (p Plan) Balanced() bool {
	return len(p.Unmatched) == 0
}

// Option configures SuggestSettlements.
type Option func(*planConfig)

type planConfig struct {
	tolerance money.Amount
}

// WithTolerance treats balances within tol of zero as settled.
// The default is zero: only exact zeros are skipped.
func WithTolerance(tol money.Amount) Option {
	return func(c *planConfig) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

type participant struct {
	id     string
	amount money.Amount // always positive: credit for creditors, debt for debtors
}

// SuggestSettlements computes a transfer plan that zeroes every balance.
//
// Greedy algorithm: repeatedly match the largest creditor with the largest
// debtor (ties broken by ascending member ID), transfer the smaller of the
// two amounts and drop whoever reaches zero. Each step settles at least one
// participant, so the plan has at most N-1 transfers for N unsettled members.
//
// If the balances do not sum to zero the loop ends with one side non-empty;
// those leftovers are returned in Plan.Unmatched.
func SuggestSettlements(b Balances, opts ...Option) Plan {
	cfg := planConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Split into creditors (owed money) and debtors (owe money), in ID order.
	// Balances within tolerance are already settled.
	var creditors, debtors []participant
	for _, id := range b.MemberIDs() {
		switch v := b[id]; {
		case v > cfg.tolerance:
			creditors = append(creditors, participant{id: id, amount: v})
		case v < -cfg.tolerance:
			debtors = append(debtors, participant{id: id, amount: -v})
		}
	}

	var plan Plan
	for len(creditors) > 0 && len(debtors) > 0 {
		// Match the largest debt with the largest credit
		ci := largest(creditors)
		di := largest(debtors)

		// Amount to settle is the smaller of what is owed on either side
		amount := money.Min(creditors[ci].amount, debtors[di].amount)
		plan.Transfers = append(plan.Transfers, Transfer{
			From:   debtors[di].id,
			To:     creditors[ci].id,
			Amount: amount,
		})

		// Update balances
		creditors[ci].amount -= amount
		debtors[di].amount -= amount

		// Drop whoever is fully settled
		if creditors[ci].amount <= cfg.tolerance {
			creditors = remove(creditors, ci)
		}
		if debtors[di].amount <= cfg.tolerance {
			debtors = remove(debtors, di)
		}
	}

	// Leftovers only remain when the input did not sum to zero
	for _, c := range creditors {
		plan.Unmatched = append(plan.Unmatched, Residual{MemberID: c.id, Amount: c.amount})
	}
	for _, d := range debtors {
		plan.Unmatched = append(plan.Unmatched, Residual{MemberID: d.id, Amount: -d.amount})
	}
	return plan
}

// largest returns the index of the participant with the largest amount.
// Participants are kept in ascending ID order, so the first maximum wins ties.
func largest(ps []participant) int {
	best := 0
	for i := 1; i < len(ps); i++ {
		if ps[i].amount > ps[best].amount {
			best = i
		}
	}
	return best
}

func remove(ps []participant, i int) []participant {
	return append(ps[:i], ps[i+1:]...)
}

// ApplyTransfers returns the balances after every transfer is paid.
func ApplyTransfers(b Balances, transfers []Transfer) Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = v
	}
	for _, t := range transfers {
		out[t.From] += t.Amount
		out[t.To] -= t.Amount
	}
	return out
}
