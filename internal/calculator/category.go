package calculator

import (
	"slices"
	"strings"

	"github.com/mmynk/spendwise/internal/money"
)

// settlementNotePrefix is the note the client writes when a settlement is
// made from a category view, e.g. "Settlement for Food".
const settlementNotePrefix = "Settlement for "

// DefaultCategory holds expenses recorded without a category.
const DefaultCategory = "Other"

// ExpenseCategory returns e's category, DefaultCategory when it has none.
func ExpenseCategory(e Expense) string {
	if e.Category == "" {
		return DefaultCategory
	}
	return e.Category
}

// CategoryBreakdown answers "who owes whom" for a single category.
type CategoryBreakdown struct {
	Category string
	Balances Balances
	Ledger   []MemberBalance
	Plan     Plan
	Expenses []Expense
	Total    money.Amount
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string
	Total    money.Amount
	Count    int
}

// FilterByCategory returns the expenses whose category equals category.
// Uncategorized expenses match DefaultCategory.
func FilterByCategory(expenses []Expense, category string) []Expense {
	if category == "" {
		category = DefaultCategory
	}
	var out []Expense
	for _, e := range expenses {
		if ExpenseCategory(e) == category {
			out = append(out, e)
		}
	}
	return out
}

// NoteForCategory returns the default note for a settlement made within a category.
func NoteForCategory(category string) string {
	if category == "" {
		return ""
	}
	return settlementNotePrefix + category
}

// SettlementCategory returns the category a settlement was made for: its
// explicit category, or the one named by a "Settlement for <category>" note.
// Empty means the settlement only adjusts overall balances.
func SettlementCategory(s Settlement) string {
	if s.Category != "" {
		return s.Category
	}
	if rest, ok := strings.CutPrefix(s.Note, settlementNotePrefix); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// ComputeCategoryBreakdown re-runs balance derivation and settlement
// suggestion restricted to one category. Expenses are filtered by exact
// category match; only settlements tagged with the same category apply.
// An empty category means DefaultCategory.
func ComputeCategoryBreakdown(members []string, expenses []Expense, settlements []Settlement, category string, opts ...Option) CategoryBreakdown {
	if category == "" {
		category = DefaultCategory
	}
	scoped := FilterByCategory(expenses, category)

	var scopedSettlements []Settlement
	for _, s := range settlements {
		// Untagged settlements only move the overall balances.
		if tag := SettlementCategory(s); tag != "" && tag == category {
			scopedSettlements = append(scopedSettlements, s)
		}
	}

	ledger := ComputeLedger(members, scoped, scopedSettlements)
	balances := BalancesFromLedger(ledger)

	var total money.Amount
	for _, e := range scoped {
		total += e.Amount
	}

	return CategoryBreakdown{
		Category: category,
		Balances: balances,
		Ledger:   ledger,
		Plan:     SuggestSettlements(balances, opts...),
		Expenses: scoped,
		Total:    total,
	}
}

// CategoryTotals sums spending per category, largest first, then by name.
func CategoryTotals(expenses []Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, e := range expenses {
		category := ExpenseCategory(e)
		i, ok := index[category]
		if !ok {
			i = len(totals)
			index[category] = i
			totals = append(totals, CategoryTotal{Category: category})
		}
		totals[i].Total += e.Amount
		totals[i].Count++
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if a.Total != b.Total {
			if a.Total > b.Total {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
	return totals
}
