package calculator

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/mmynk/spendwise/internal/money"
)

func TestSuggestSettlements(t *testing.T) {
	tests := []struct {
		name          string
		balances      Balances
		opts          []Option
		want          []Transfer
		wantUnmatched []Residual
	}{
		{
			name:     "empty",
			balances: Balances{},
		},
		{
			name:     "already settled",
			balances: Balances{"A": 0, "B": 0},
		},
		{
			name:     "one creditor two debtors, ties broken by ID",
			balances: Balances{"A": 20000, "B": -10000, "C": -10000},
			want: []Transfer{
				{From: "B", To: "A", Amount: 10000},
				{From: "C", To: "A", Amount: 10000},
			},
		},
		{
			name:     "after a recorded settlement",
			balances: Balances{"A": 10000, "B": 0, "C": -10000},
			want:     []Transfer{{From: "C", To: "A", Amount: 10000}},
		},
		{
			name:     "largest debtor matched with largest creditor first",
			balances: Balances{"A": 5000, "B": 3000, "C": -1000, "D": -7000},
			want: []Transfer{
				{From: "D", To: "A", Amount: 5000},
				{From: "D", To: "B", Amount: 2000},
				{From: "C", To: "B", Amount: 1000},
			},
		},
		{
			name:          "residual creditor is reported",
			balances:      Balances{"A": 5000, "B": -3000},
			want:          []Transfer{{From: "B", To: "A", Amount: 3000}},
			wantUnmatched: []Residual{{MemberID: "A", Amount: 2000}},
		},
		{
			name:     "residual debtor is reported",
			balances: Balances{"A": 1000, "B": -3000, "C": -500},
			want:     []Transfer{{From: "B", To: "A", Amount: 1000}},
			wantUnmatched: []Residual{
				{MemberID: "B", Amount: -2000},
				{MemberID: "C", Amount: -500},
			},
		},
		{
			name:     "tolerance ignores rounding dust",
			balances: Balances{"A": 10001, "B": -10000, "C": -1},
			opts:     []Option{WithTolerance(1)},
			want:     []Transfer{{From: "B", To: "A", Amount: 10000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := SuggestSettlements(tt.balances, tt.opts...)
			if !reflect.DeepEqual(plan.Transfers, tt.want) {
				t.Errorf("transfers = %v, want %v", plan.Transfers, tt.want)
			}
			if !reflect.DeepEqual(plan.Unmatched, tt.wantUnmatched) {
				t.Errorf("unmatched = %v, want %v", plan.Unmatched, tt.wantUnmatched)
			}
			if plan.Balanced() != (len(tt.wantUnmatched) == 0) {
				t.Errorf("Balanced() = %v", plan.Balanced())
			}
			for _, tr := range plan.Transfers {
				if !tr.Amount.IsPositive() {
					t.Errorf("non-positive transfer %v", tr)
				}
			}
		})
	}
}

func TestSuggestSettlements_ClosesTheLoop(t *testing.T) {
	members := []string{"ann", "ben", "cat", "dan", "eve", "fay"}
	var expenses []Expense
	for i, amt := range []money.Amount{12000, 4550, 999, 30001, 777, 2500, 81234} {
		payer := members[(i*5)%len(members)]
		sharers := members[i%3:]
		expenses = append(expenses, equalSplit(t, fmt.Sprintf("e%d", i), payer, "", amt, sharers...))
	}
	settlements := []Settlement{{From: "fay", To: "ann", Amount: 2000}}

	balances := ComputeBalances(members, expenses, settlements)
	plan := SuggestSettlements(balances)
	if !plan.Balanced() {
		t.Fatalf("unexpected unmatched residuals: %v", plan.Unmatched)
	}

	nonZero := 0
	for _, v := range balances {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero > 0 && len(plan.Transfers) > nonZero-1 {
		t.Errorf("%d transfers for %d unsettled members, want at most %d", len(plan.Transfers), nonZero, nonZero-1)
	}

	// Record every suggestion as a settlement and recompute from scratch.
	for _, tr := range plan.Transfers {
		settlements = append(settlements, Settlement{From: tr.From, To: tr.To, Amount: tr.Amount})
	}
	after := ComputeBalances(members, expenses, settlements)
	if !after.Settled() {
		t.Errorf("balances after applying suggestions = %v, want all zero", after)
	}

	if applied := ApplyTransfers(balances, plan.Transfers); !applied.Settled() {
		t.Errorf("ApplyTransfers = %v, want all zero", applied)
	}
}

func TestSuggestSettlements_Deterministic(t *testing.T) {
	balances := Balances{"e": 500, "d": 500, "c": -250, "b": -250, "a": -500}

	first := SuggestSettlements(balances)
	for i := 0; i < 20; i++ {
		again := SuggestSettlements(balances)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d = %v, first run = %v", i, again, first)
		}
	}

	want := []Transfer{
		{From: "a", To: "d", Amount: 500},
		{From: "b", To: "e", Amount: 250},
		{From: "c", To: "e", Amount: 250},
	}
	if !reflect.DeepEqual(first.Transfers, want) {
		t.Errorf("transfers = %v, want %v", first.Transfers, want)
	}
}

func TestSuggestSettlements_DoesNotMutateInput(t *testing.T) {
	balances := Balances{"A": 20000, "B": -10000, "C": -10000}
	SuggestSettlements(balances)
	assertBalances(t, balances, map[string]money.Amount{"A": 20000, "B": -10000, "C": -10000})
}
