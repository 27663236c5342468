package api

import "github.com/mmynk/spendwise/internal/money"

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	// Members are display names; each becomes a new member.
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID     string `json:"groupId"`
	DisplayName string `json:"displayName"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID  string `json:"groupId"`
	MemberID string `json:"memberId"`
}

type RemoveMemberResponse struct{}

// MemberBalance is one member's position. Positive Net means the group owes
// the member.
type MemberBalance struct {
	MemberID    string       `json:"memberId"`
	DisplayName string       `json:"displayName"`
	Paid        money.Amount `json:"paid"`
	Owed        money.Amount `json:"owed"`
	Net         money.Amount `json:"net"`
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	FromMemberID string       `json:"fromMemberId"`
	FromName     string       `json:"fromName"`
	ToMemberID   string       `json:"toMemberId"`
	ToName       string       `json:"toName"`
	Amount       money.Amount `json:"amount"`
}

// Residual is a balance the suggestions could not clear.
type Residual struct {
	MemberID    string       `json:"memberId"`
	DisplayName string       `json:"displayName"`
	Amount      money.Amount `json:"amount"`
}

type CategoryTotal struct {
	Category string       `json:"category"`
	Total    money.Amount `json:"total"`
	Count    int          `json:"count"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupSummaryResponse struct {
	Group          *Group           `json:"group"`
	Balances       []*MemberBalance `json:"balances"`
	Suggested      []*Transfer      `json:"suggested"`
	Unmatched      []*Residual      `json:"unmatched,omitempty"`
	Drift          money.Amount     `json:"drift"`
	TotalSpent     money.Amount     `json:"totalSpent"`
	CategoryTotals []*CategoryTotal `json:"categoryTotals"`
	Expenses       []*Expense       `json:"expenses"`
	Settlements    []*Settlement    `json:"settlements"`
}

type GetCategorySummaryRequest struct {
	GroupID  string `json:"groupId"`
	Category string `json:"category"`
}

type GetCategorySummaryResponse struct {
	Category  string           `json:"category"`
	Total     money.Amount     `json:"total"`
	Balances  []*MemberBalance `json:"balances"`
	Suggested []*Transfer      `json:"suggested"`
	Unmatched []*Residual      `json:"unmatched,omitempty"`
	Expenses  []*Expense       `json:"expenses"`
}
