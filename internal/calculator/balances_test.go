package calculator

import (
	"testing"

	"github.com/mmynk/spendwise/internal/money"
)

func equalSplit(t *testing.T, id, paidBy, category string, amount money.Amount, members ...string) Expense {
	t.Helper()
	shares, err := SplitEqual(amount, members)
	if err != nil {
		t.Fatalf("SplitEqual failed: %v", err)
	}
	return Expense{ID: id, PaidBy: paidBy, Category: category, Amount: amount, Shares: shares}
}

func assertBalances(t *testing.T, got Balances, want map[string]money.Amount) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %d balances, want %d: %v", len(got), len(want), got)
	}
	for id, w := range want {
		g, ok := got[id]
		if !ok {
			t.Errorf("missing balance for %s", id)
			continue
		}
		if g != w {
			t.Errorf("%s balance = %s, want %s", id, g, w)
		}
	}
}

func TestComputeBalances(t *testing.T) {
	members := []string{"A", "B", "C"}

	tests := []struct {
		name        string
		members     []string
		expenses    func(t *testing.T) []Expense
		settlements []Settlement
		want        map[string]money.Amount
	}{
		{
			name:     "no activity yields zero for every member",
			members:  members,
			expenses: func(t *testing.T) []Expense { return nil },
			want:     map[string]money.Amount{"A": 0, "B": 0, "C": 0},
		},
		{
			name:    "A pays 300 split equally",
			members: members,
			expenses: func(t *testing.T) []Expense {
				return []Expense{equalSplit(t, "e1", "A", "Food", 30000, "A", "B", "C")}
			},
			want: map[string]money.Amount{"A": 20000, "B": -10000, "C": -10000},
		},
		{
			name:    "B pays A back 100",
			members: members,
			expenses: func(t *testing.T) []Expense {
				return []Expense{equalSplit(t, "e1", "A", "Food", 30000, "A", "B", "C")}
			},
			settlements: []Settlement{{From: "B", To: "A", Amount: 10000}},
			want:        map[string]money.Amount{"A": 10000, "B": 0, "C": -10000},
		},
		{
			name:    "explicit shares 30/30/30",
			members: members,
			expenses: func(t *testing.T) []Expense {
				return []Expense{{
					ID: "e1", PaidBy: "A", Amount: 9000,
					Shares: []Share{{"A", 3000}, {"B", 3000}, {"C", 3000}},
				}}
			},
			want: map[string]money.Amount{"A": 6000, "B": -3000, "C": -3000},
		},
		{
			name:    "unknown member references become implicit members",
			members: []string{"A"},
			expenses: func(t *testing.T) []Expense {
				return []Expense{{
					ID: "e1", PaidBy: "A", Amount: 5000,
					Shares: []Share{{"A", 2500}, {"Z", 2500}},
				}}
			},
			settlements: []Settlement{{From: "Y", To: "A", Amount: 100}},
			want:        map[string]money.Amount{"A": 2400, "Z": -2500, "Y": 100},
		},
		{
			name:    "several payers",
			members: members,
			expenses: func(t *testing.T) []Expense {
				return []Expense{
					equalSplit(t, "e1", "A", "Food", 6000, "A", "B", "C"),
					equalSplit(t, "e2", "B", "Travel", 3000, "B", "C"),
				}
			},
			want: map[string]money.Amount{"A": 4000, "B": -500, "C": -3500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.members, tt.expenses(t), tt.settlements)
			assertBalances(t, got, tt.want)
			if got.Total() != 0 {
				t.Errorf("balances sum to %s, want 0", got.Total())
			}
		})
	}
}

func TestComputeBalances_Conservation(t *testing.T) {
	members := []string{"ann", "ben", "cat", "dan", "eve"}
	var expenses []Expense
	amounts := []money.Amount{1001, 333, 99999, 7, 12345, 50000, 1}
	for i, amt := range amounts {
		payer := members[i%len(members)]
		sharers := members[:1+i%len(members)]
		expenses = append(expenses, equalSplit(t, "e", payer, "", amt, sharers...))
	}
	settlements := []Settlement{
		{From: "ben", To: "ann", Amount: 1234},
		{From: "eve", To: "cat", Amount: 5},
		{From: "ann", To: "dan", Amount: 777},
	}

	got := ComputeBalances(members, expenses, settlements)
	if got.Total() != 0 {
		t.Errorf("balances sum to %s, want 0", got.Total())
	}
}

func TestComputeBalances_MalformedSharesSurfaceAsDrift(t *testing.T) {
	expenses := []Expense{{
		ID: "e1", PaidBy: "A", Amount: 10000,
		Shares: []Share{{"A", 4000}, {"B", 4000}},
	}}

	got := ComputeBalances([]string{"A", "B"}, expenses, nil)
	if got.Total() != 2000 {
		t.Errorf("drift = %s, want 20.00", got.Total())
	}
}

func TestComputeBalances_SelfPaymentWashout(t *testing.T) {
	withSelf := ComputeBalances([]string{"A", "B"}, []Expense{{
		PaidBy: "A", Amount: 10000,
		Shares: []Share{{"A", 4000}, {"B", 6000}},
	}}, nil)

	// Same expense with A's own share left out: A fronted 60 on B's behalf.
	withoutSelf := ComputeBalances([]string{"A", "B"}, []Expense{{
		PaidBy: "A", Amount: 6000,
		Shares: []Share{{"B", 6000}},
	}}, nil)

	if withSelf["A"] != withoutSelf["A"] {
		t.Errorf("payer balance with own share = %s, without = %s", withSelf["A"], withoutSelf["A"])
	}
	if withSelf["A"] != 6000 {
		t.Errorf("payer balance = %s, want 60.00", withSelf["A"])
	}
}

func TestComputeLedger(t *testing.T) {
	expenses := []Expense{{
		PaidBy: "A", Amount: 30000,
		Shares: []Share{{"A", 10000}, {"B", 10000}, {"C", 10000}},
	}}
	settlements := []Settlement{{From: "B", To: "A", Amount: 10000}}

	ledger := ComputeLedger([]string{"C", "B", "A"}, expenses, settlements)
	if len(ledger) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ledger))
	}
	if ledger[0].MemberID != "A" || ledger[1].MemberID != "B" || ledger[2].MemberID != "C" {
		t.Errorf("ledger not sorted by member ID: %v", ledger)
	}

	a := ledger[0]
	if a.Paid != 30000 || a.Owed != 20000 || a.Net() != 10000 {
		t.Errorf("A = paid %s owed %s net %s, want 300.00/200.00/100.00", a.Paid, a.Owed, a.Net())
	}
	b := ledger[1]
	if b.Paid != 10000 || b.Owed != 10000 || b.Net() != 0 {
		t.Errorf("B = paid %s owed %s net %s, want 100.00/100.00/0.00", b.Paid, b.Owed, b.Net())
	}
}
