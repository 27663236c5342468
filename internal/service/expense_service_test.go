package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/pkg/api"
	"github.com/mmynk/spendwise/pkg/api/apiconnect"
)

func addExpense(t *testing.T, c testClients, req *api.AddExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func settle(t *testing.T, c testClients, req *api.RecordSettlementRequest) *api.Settlement {
	t.Helper()
	resp, err := c.expenses.RecordSettlement(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	return resp.Msg.Settlement
}

func TestAddExpense_EqualSplitDefaultsToAllMembers(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Trip", "Alice", "Bob", "Charlie")
	alice := memberID(t, group, "Alice")

	expense := addExpense(t, c, &api.AddExpenseRequest{
		GroupID:     group.ID,
		Description: "Taxi",
		Amount:      money.MustParse("100.00"),
		Category:    " Travel ",
		PaidBy:      alice,
	})

	if expense.ID == "" {
		t.Error("expected expense ID")
	}
	if expense.Category != "Travel" {
		t.Errorf("category = %q, want trimmed", expense.Category)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(expense.Shares))
	}
	want := []money.Amount{3334, 3333, 3333}
	for i, s := range expense.Shares {
		if s.MemberID != group.Members[i].ID || s.Amount != want[i] {
			t.Errorf("share %d = %+v, want %s for %s", i, s, want[i], group.Members[i].DisplayName)
		}
	}
}

func TestAddExpense_UnequalSplit(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Dinner", "Alice", "Bob", "Charlie")
	alice, bob, charlie := memberID(t, group, "Alice"), memberID(t, group, "Bob"), memberID(t, group, "Charlie")

	t.Run("zero shares are dropped", func(t *testing.T) {
		expense := addExpense(t, c, &api.AddExpenseRequest{
			GroupID:     group.ID,
			Description: "Wine",
			Amount:      money.MustParse("40"),
			PaidBy:      bob,
			Shares: []*api.Share{
				{MemberID: alice, Amount: money.MustParse("25")},
				{MemberID: bob, Amount: money.MustParse("15")},
				{MemberID: charlie, Amount: 0},
			},
		})
		if len(expense.Shares) != 2 {
			t.Errorf("expected 2 shares, got %d", len(expense.Shares))
		}
	})

	t.Run("rounding within tolerance is absorbed", func(t *testing.T) {
		expense := addExpense(t, c, &api.AddExpenseRequest{
			GroupID:     group.ID,
			Description: "Pizza",
			Amount:      money.MustParse("100"),
			PaidBy:      alice,
			Shares: []*api.Share{
				{MemberID: alice, Amount: money.MustParse("33.33")},
				{MemberID: bob, Amount: money.MustParse("33.33")},
				{MemberID: charlie, Amount: money.MustParse("33.33")},
			},
		})
		var sum money.Amount
		for _, s := range expense.Shares {
			sum += s.Amount
		}
		if sum != expense.Amount {
			t.Errorf("shares sum to %s, want %s", sum, expense.Amount)
		}
		if expense.Shares[0].Amount != 3334 {
			t.Errorf("first share = %s, want 33.34", expense.Shares[0].Amount)
		}
	})

	t.Run("mismatch beyond tolerance is rejected", func(t *testing.T) {
		_, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
			GroupID:     group.ID,
			Description: "Bad",
			Amount:      money.MustParse("100"),
			PaidBy:      alice,
			Shares: []*api.Share{
				{MemberID: alice, Amount: money.MustParse("50")},
				{MemberID: bob, Amount: money.MustParse("40")},
			},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestAddExpense_Validation(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Checks", "Alice", "Bob")
	other := createGroup(t, c, "Other", "Zed")
	alice := memberID(t, group, "Alice")
	zed := memberID(t, other, "Zed")

	tests := []struct {
		name string
		req  *api.AddExpenseRequest
		want connect.Code
	}{
		{"missing description", &api.AddExpenseRequest{GroupID: group.ID, Amount: 100, PaidBy: alice}, connect.CodeInvalidArgument},
		{"zero amount", &api.AddExpenseRequest{GroupID: group.ID, Description: "x", PaidBy: alice}, connect.CodeInvalidArgument},
		{"negative amount", &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: -5, PaidBy: alice}, connect.CodeInvalidArgument},
		{"payer from another group", &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 100, PaidBy: zed}, connect.CodeInvalidArgument},
		{"sharer from another group", &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 100, PaidBy: alice, SplitAmong: []string{alice, zed}}, connect.CodeInvalidArgument},
		{"duplicate sharer", &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 100, PaidBy: alice, SplitAmong: []string{alice, alice}}, connect.CodeInvalidArgument},
		{"unknown group", &api.AddExpenseRequest{GroupID: "nope", Description: "x", Amount: 100, PaidBy: alice}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestListAndDeleteExpenses(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, c, "Mixed", "Alice", "Bob")
	alice := memberID(t, group, "Alice")

	food := addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "Lunch", Amount: 2000, Category: "Food", PaidBy: alice})
	addExpense(t, c, &api.AddExpenseRequest{GroupID: group.ID, Description: "Bus", Amount: 500, Category: "Travel", PaidBy: alice})

	resp, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 {
		t.Errorf("expected 2 expenses, got %d", len(resp.Msg.Expenses))
	}

	resp, err = c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID, Category: "Food"}))
	if err != nil {
		t.Fatalf("ListExpenses(Food) failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 1 || resp.Msg.Expenses[0].ID != food.ID {
		t.Errorf("unexpected food expenses %+v", resp.Msg.Expenses)
	}

	other := createGroup(t, c, "Other", "Zed")
	_, err = c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{GroupID: other.ID, ExpenseID: food.ID}))
	assertCode(t, err, connect.CodeNotFound)

	if _, err := c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{GroupID: group.ID, ExpenseID: food.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{GroupID: group.ID, ExpenseID: food.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestRecordSettlement(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, c, "Settle", "Alice", "Bob")
	other := createGroup(t, c, "Other", "Zed")
	alice, bob, zed := memberID(t, group, "Alice"), memberID(t, group, "Bob"), memberID(t, other, "Zed")

	t.Run("category sets the default note", func(t *testing.T) {
		s := settle(t, c, &api.RecordSettlementRequest{
			GroupID: group.ID, FromMemberID: bob, ToMemberID: alice,
			Amount: money.MustParse("12.50"), Category: "Food",
		})
		if s.Note != "Settlement for Food" || s.Category != "Food" {
			t.Errorf("note = %q, category = %q", s.Note, s.Category)
		}
		if s.CreatedBy != testUser || s.SettledAt == 0 {
			t.Errorf("created_by = %q, settled_at = %d", s.CreatedBy, s.SettledAt)
		}
	})

	t.Run("explicit note is kept", func(t *testing.T) {
		s := settle(t, c, &api.RecordSettlementRequest{
			GroupID: group.ID, FromMemberID: alice, ToMemberID: bob,
			Amount: 100, Note: "cash", Category: "Food",
		})
		if s.Note != "cash" {
			t.Errorf("note = %q", s.Note)
		}
	})

	tests := []struct {
		name string
		req  *api.RecordSettlementRequest
		want connect.Code
	}{
		{"self payment", &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: alice, ToMemberID: alice, Amount: 100}, connect.CodeInvalidArgument},
		{"zero amount", &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice}, connect.CodeInvalidArgument},
		{"non-member", &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: zed, ToMemberID: alice, Amount: 100}, connect.CodeInvalidArgument},
		{"missing member", &api.RecordSettlementRequest{GroupID: group.ID, ToMemberID: alice, Amount: 100}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.expenses.RecordSettlement(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}

	resp, err := c.expenses.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(resp.Msg.Settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(resp.Msg.Settlements))
	}
	if resp.Msg.Settlements[0].Note != "cash" {
		t.Errorf("expected newest settlement first, got %q", resp.Msg.Settlements[0].Note)
	}
}

func TestAddExpense_RejectsSubCentAmounts(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Cents", "Alice", "Bob")
	alice := memberID(t, group, "Alice")
	ctx := context.Background()

	for _, amount := range []string{"10.005", `"0.009"`} {
		t.Run(amount, func(t *testing.T) {
			body := fmt.Sprintf(`{"groupId":%q,"description":"Snack","amount":%s,"paidBy":%q}`, group.ID, amount, alice)
			resp, err := http.Post(c.url+apiconnect.ExpenseServiceAddExpenseProcedure, "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	resp, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 0 {
		t.Errorf("expected nothing stored, got %d expenses", len(resp.Msg.Expenses))
	}
}

func TestAddExpense_DefaultCategory(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "Flat", "Alice", "Bob")
	alice, bob := memberID(t, group, "Alice"), memberID(t, group, "Bob")
	ctx := context.Background()

	expense := addExpense(t, c, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Bulbs", Amount: money.MustParse("10.00"), PaidBy: alice,
	})
	if expense.Category != calculator.DefaultCategory {
		t.Errorf("category = %q, want %q", expense.Category, calculator.DefaultCategory)
	}

	// An untagged settlement moves the overall balances only.
	settle(t, c, &api.RecordSettlementRequest{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: money.MustParse("99.99")})

	resp, err := c.groups.GetCategorySummary(ctx, connect.NewRequest(&api.GetCategorySummaryRequest{
		GroupID: group.ID, Category: calculator.DefaultCategory,
	}))
	if err != nil {
		t.Fatalf("GetCategorySummary failed: %v", err)
	}
	s := resp.Msg
	if s.Category != calculator.DefaultCategory || len(s.Expenses) != 1 || s.Total != 1000 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.Suggested) != 1 || s.Suggested[0].FromMemberID != bob || s.Suggested[0].Amount != 500 {
		t.Errorf("suggested = %+v, want Bob pays Alice 5.00", s.Suggested)
	}

	summary, err := c.groups.GetGroupSummary(ctx, connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	for _, ct := range summary.Msg.CategoryTotals {
		if ct.Category == "" {
			t.Errorf("unexpected empty category bucket %+v", ct)
		}
	}
}
