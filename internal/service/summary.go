package service

import (
	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/pkg/api"
)

// Summarize derives the group summary from a snapshot: balances, suggested
// transfers, residuals, drift, category totals and history. It does no I/O,
// so the CLI uses it directly against a store.
func Summarize(snap *models.Snapshot, opts ...calculator.Option) *api.GetGroupSummaryResponse {
	members, expenses, settlements := engineInputs(snap)
	names := snap.Group.MemberNames()

	ledger := calculator.ComputeLedger(members, expenses, settlements)
	balances := calculator.BalancesFromLedger(ledger)
	plan := calculator.SuggestSettlements(balances, opts...)

	var spent money.Amount
	for _, e := range snap.Expenses {
		spent += e.Amount
	}

	totals := calculator.CategoryTotals(expenses)
	categoryTotals := make([]*api.CategoryTotal, len(totals))
	for i, ct := range totals {
		categoryTotals[i] = &api.CategoryTotal{Category: ct.Category, Total: ct.Total, Count: ct.Count}
	}

	return &api.GetGroupSummaryResponse{
		Group:          toAPIGroup(snap.Group),
		Balances:       toAPIBalances(ledger, names),
		Suggested:      toAPITransfers(plan.Transfers, names),
		Unmatched:      toAPIResiduals(plan.Unmatched, names),
		Drift:          balances.Total(),
		TotalSpent:     spent,
		CategoryTotals: categoryTotals,
		Expenses:       toAPIExpenses(snap.Expenses),
		Settlements:    toAPISettlements(snap.Settlements),
	}
}

// SummarizeCategory runs the same derivation restricted to one category.
func SummarizeCategory(snap *models.Snapshot, category string, opts ...calculator.Option) *api.GetCategorySummaryResponse {
	members, expenses, settlements := engineInputs(snap)
	names := snap.Group.MemberNames()

	breakdown := calculator.ComputeCategoryBreakdown(members, expenses, settlements, category, opts...)

	inCategory := make([]*api.Expense, 0, len(breakdown.Expenses))
	for _, e := range snap.Expenses {
		if calculator.ExpenseCategory(calculator.Expense{Category: e.Category}) == breakdown.Category {
			inCategory = append(inCategory, toAPIExpense(e))
		}
	}

	return &api.GetCategorySummaryResponse{
		Category:  breakdown.Category,
		Total:     breakdown.Total,
		Balances:  toAPIBalances(breakdown.Ledger, names),
		Suggested: toAPITransfers(breakdown.Plan.Transfers, names),
		Unmatched: toAPIResiduals(breakdown.Plan.Unmatched, names),
		Expenses:  inCategory,
	}
}

// displayName falls back to the ID for members that no longer exist.
func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func toAPIBalances(ledger []calculator.MemberBalance, names map[string]string) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(ledger))
	for i, mb := range ledger {
		out[i] = &api.MemberBalance{
			MemberID:    mb.MemberID,
			DisplayName: displayName(names, mb.MemberID),
			Paid:        mb.Paid,
			Owed:        mb.Owed,
			Net:         mb.Net(),
		}
	}
	return out
}

func toAPITransfers(transfers []calculator.Transfer, names map[string]string) []*api.Transfer {
	out := make([]*api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = &api.Transfer{
			FromMemberID: t.From,
			FromName:     displayName(names, t.From),
			ToMemberID:   t.To,
			ToName:       displayName(names, t.To),
			Amount:       t.Amount,
		}
	}
	return out
}

func toAPIResiduals(residuals []calculator.Residual, names map[string]string) []*api.Residual {
	if len(residuals) == 0 {
		return nil
	}
	out := make([]*api.Residual, len(residuals))
	for i, r := range residuals {
		out[i] = &api.Residual{
			MemberID:    r.MemberID,
			DisplayName: displayName(names, r.MemberID),
			Amount:      r.Amount,
		}
	}
	return out
}
