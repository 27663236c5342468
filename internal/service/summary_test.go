package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/pkg/api"
)

func summary(t *testing.T, c testClients, groupID string) *api.GetGroupSummaryResponse {
	t.Helper()
	resp, err := c.groups.GetGroupSummary(context.Background(), connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	return resp.Msg
}

func netByName(balances []*api.MemberBalance) map[string]money.Amount {
	out := make(map[string]money.Amount, len(balances))
	for _, b := range balances {
		out[b.DisplayName] = b.Net
	}
	return out
}

// transferSet keys transfers by "from->to" display names.
func transferSet(transfers []*api.Transfer) map[string]money.Amount {
	out := make(map[string]money.Amount, len(transfers))
	for _, tr := range transfers {
		out[tr.FromName+"->"+tr.ToName] = tr.Amount
	}
	return out
}

func assertNet(t *testing.T, got []*api.MemberBalance, want map[string]money.Amount) {
	t.Helper()
	nets := netByName(got)
	for name, amount := range want {
		if nets[name] != amount {
			t.Errorf("%s net = %s, want %s", name, nets[name], amount)
		}
	}
}

func assertTransfers(t *testing.T, got []*api.Transfer, want map[string]money.Amount) {
	t.Helper()
	set := transferSet(got)
	if len(set) != len(want) {
		t.Errorf("got %d transfers %v, want %v", len(set), set, want)
	}
	for k, amount := range want {
		if set[k] != amount {
			t.Errorf("transfer %s = %s, want %s", k, set[k], amount)
		}
	}
}

func TestGetGroupSummary_Scenarios(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Goa", "A", "B", "C")
	a, b := memberID(t, group, "A"), memberID(t, group, "B")

	addExpense(t, c, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Villa", Amount: money.MustParse("300"), Category: "Stay", PaidBy: a,
	})

	t.Run("one payer, three-way split", func(t *testing.T) {
		s := summary(t, c, group.ID)
		assertNet(t, s.Balances, map[string]money.Amount{"A": 20000, "B": -10000, "C": -10000})
		assertTransfers(t, s.Suggested, map[string]money.Amount{"B->A": 10000, "C->A": 10000})
		if !s.Drift.IsZero() || len(s.Unmatched) != 0 {
			t.Errorf("drift = %s, unmatched = %v", s.Drift, s.Unmatched)
		}
		if s.TotalSpent != 30000 {
			t.Errorf("total spent = %s", s.TotalSpent)
		}
	})

	settle(t, c, &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: b, ToMemberID: a, Amount: money.MustParse("100")})

	t.Run("after B pays A", func(t *testing.T) {
		s := summary(t, c, group.ID)
		assertNet(t, s.Balances, map[string]money.Amount{"A": 10000, "B": 0, "C": -10000})
		assertTransfers(t, s.Suggested, map[string]money.Amount{"C->A": 10000})
		if len(s.Settlements) != 1 {
			t.Errorf("expected settlement history of 1, got %d", len(s.Settlements))
		}
	})

	t.Run("ledger splits paid and owed", func(t *testing.T) {
		s := summary(t, c, group.ID)
		for _, mb := range s.Balances {
			if mb.Net != mb.Paid-mb.Owed {
				t.Errorf("%s: net %s != paid %s - owed %s", mb.DisplayName, mb.Net, mb.Paid, mb.Owed)
			}
		}
	})
}

func TestGetGroupSummary_EqualThirds(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Thirds", "A", "B", "C")
	a, b, cc := memberID(t, group, "A"), memberID(t, group, "B"), memberID(t, group, "C")

	addExpense(t, c, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Dinner", Amount: money.MustParse("90"), PaidBy: a,
		Shares: []*api.Share{{MemberID: a, Amount: 3000}, {MemberID: b, Amount: 3000}, {MemberID: cc, Amount: 3000}},
	})

	s := summary(t, c, group.ID)
	assertNet(t, s.Balances, map[string]money.Amount{"A": 6000, "B": -3000, "C": -3000})
	assertTransfers(t, s.Suggested, map[string]money.Amount{"B->A": 3000, "C->A": 3000})
}

func TestGetGroupSummary_EmptyGroup(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Empty", "A", "B")

	s := summary(t, c, group.ID)
	if len(s.Suggested) != 0 {
		t.Errorf("expected no transfers, got %v", s.Suggested)
	}
	if len(s.Balances) != 2 {
		t.Errorf("expected a balance row per member, got %d", len(s.Balances))
	}
	assertNet(t, s.Balances, map[string]money.Amount{"A": 0, "B": 0})
}

func TestGetGroupSummary_CategoryTotals(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Totals", "A", "B")
	a := memberID(t, group, "A")

	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "1", Amount: 1000, Category: "Food", PaidBy: a})
	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "2", Amount: 5000, Category: "Travel", PaidBy: a})
	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "3", Amount: 500, Category: "Food", PaidBy: a})

	s := summary(t, c, group.ID)
	if len(s.CategoryTotals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.CategoryTotals))
	}
	if s.CategoryTotals[0].Category != "Travel" || s.CategoryTotals[1].Total != 1500 || s.CategoryTotals[1].Count != 2 {
		t.Errorf("unexpected totals %+v %+v", s.CategoryTotals[0], s.CategoryTotals[1])
	}
}

func TestGetCategorySummary(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, c, "Trip", "A", "B")
	a, b := memberID(t, group, "A"), memberID(t, group, "B")

	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "Dinner", Amount: money.MustParse("80"), Category: "Food", PaidBy: a})
	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "Train", Amount: money.MustParse("60"), Category: "Travel", PaidBy: b})

	food := func() *api.GetCategorySummaryResponse {
		resp, err := c.groups.GetCategorySummary(ctx, connect.NewRequest(&api.GetCategorySummaryRequest{GroupID: group.ID, Category: "Food"}))
		if err != nil {
			t.Fatalf("GetCategorySummary failed: %v", err)
		}
		return resp.Msg
	}

	got := food()
	if got.Total != 8000 || len(got.Expenses) != 1 {
		t.Errorf("total = %s, expenses = %d", got.Total, len(got.Expenses))
	}
	assertNet(t, got.Balances, map[string]money.Amount{"A": 4000, "B": -4000})
	assertTransfers(t, got.Suggested, map[string]money.Amount{"B->A": 4000})

	// Overall: A +40 -30 = +10, B -40 +30 = -10.
	assertTransfers(t, summary(t, c, group.ID).Suggested, map[string]money.Amount{"B->A": 1000})

	settle(t, c, &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: b, ToMemberID: a, Amount: money.MustParse("40"), Category: "Food"})

	got = food()
	if len(got.Suggested) != 0 {
		t.Errorf("expected food to be settled, got %v", got.Suggested)
	}
	// The food settlement also moves the overall balances past zero.
	assertTransfers(t, summary(t, c, group.ID).Suggested, map[string]money.Amount{"A->B": 3000})

	_, err := c.groups.GetCategorySummary(ctx, connect.NewRequest(&api.GetCategorySummaryRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetGroupSummary_PermissionDenied(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Private", "A")

	_, err := c.groups.GetGroupSummary(context.Background(),
		asUser(connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: group.ID}), "user-mallory"))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestSummarize_ReportsDrift(t *testing.T) {
	snap := &models.Snapshot{
		Group: &models.Group{ID: "g", Members: []models.Member{{ID: "a", DisplayName: "A"}, {ID: "b", DisplayName: "B"}}},
		Expenses: []*models.Expense{{
			ID: "e", Amount: 1000, PaidBy: "a",
			Shares: []models.Share{{MemberID: "a", Amount: 400}, {MemberID: "b", Amount: 500}},
		}},
	}

	s := Summarize(snap)
	if s.Drift != 100 {
		t.Errorf("drift = %s, want 1.00", s.Drift)
	}
	if len(s.Unmatched) != 1 || s.Unmatched[0].DisplayName != "A" || s.Unmatched[0].Amount != 100 {
		t.Errorf("unmatched = %+v", s.Unmatched)
	}
	assertTransfers(t, s.Suggested, map[string]money.Amount{"B->A": 500})
}
