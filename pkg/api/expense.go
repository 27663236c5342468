package api

import "github.com/mmynk/spendwise/internal/money"

type Share struct {
	MemberID string       `json:"memberId"`
	Amount   money.Amount `json:"amount"`
}

type Expense struct {
	ID          string       `json:"id"`
	GroupID     string       `json:"groupId"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Category    string       `json:"category,omitempty"`
	PaidBy      string       `json:"paidBy"`
	Shares      []*Share     `json:"shares"`
	Date        int64        `json:"date"`
	CreatedAt   int64        `json:"createdAt"`
}

// AddExpenseRequest records an expense. With Shares set the split is taken
// as given; otherwise Amount is divided equally between SplitAmong, or
// between all members when SplitAmong is empty.
type AddExpenseRequest struct {
	GroupID     string       `json:"groupId"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Category    string       `json:"category,omitempty"`
	PaidBy      string       `json:"paidBy"`
	SplitAmong  []string     `json:"splitAmong,omitempty"`
	Shares      []*Share     `json:"shares,omitempty"`
	Date        int64        `json:"date,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID  string `json:"groupId"`
	Category string `json:"category,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	GroupID   string `json:"groupId"`
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type Settlement struct {
	ID           string       `json:"id"`
	GroupID      string       `json:"groupId"`
	FromMemberID string       `json:"fromMemberId"`
	ToMemberID   string       `json:"toMemberId"`
	Amount       money.Amount `json:"amount"`
	Note         string       `json:"note,omitempty"`
	Category     string       `json:"category,omitempty"`
	SettledAt    int64        `json:"settledAt"`
	CreatedBy    string       `json:"createdBy,omitempty"`
}

type RecordSettlementRequest struct {
	GroupID      string       `json:"groupId"`
	FromMemberID string       `json:"fromMemberId"`
	ToMemberID   string       `json:"toMemberId"`
	Amount       money.Amount `json:"amount"`
	Note         string       `json:"note,omitempty"`
	// Category scopes the settlement to one category's balances.
	Category string `json:"category,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
