package service

import (
	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/pkg/api"
)

func toAPIMember(m models.Member) *api.Member {
	return &api.Member{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		CreatedAt:   m.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = toAPIMember(m)
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	shares := make([]*api.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = &api.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		PaidBy:      e.PaidBy,
		Shares:      shares,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Note:         s.Note,
		Category:     s.Category,
		SettledAt:    s.SettledAt,
		CreatedBy:    s.CreatedBy,
	}
}

func toAPISettlements(settlements []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// engineInputs converts a snapshot into the settlement engine's inputs.
func engineInputs(snap *models.Snapshot) ([]string, []calculator.Expense, []calculator.Settlement) {
	expenses := make([]calculator.Expense, len(snap.Expenses))
	for i, e := range snap.Expenses {
		shares := make([]calculator.Share, len(e.Shares))
		for j, s := range e.Shares {
			shares[j] = calculator.Share{MemberID: s.MemberID, Amount: s.Amount}
		}
		expenses[i] = calculator.Expense{
			ID:          e.ID,
			Description: e.Description,
			Category:    e.Category,
			PaidBy:      e.PaidBy,
			Amount:      e.Amount,
			Shares:      shares,
		}
	}

	settlements := make([]calculator.Settlement, len(snap.Settlements))
	for i, s := range snap.Settlements {
		settlements[i] = calculator.Settlement{
			From:     s.FromMemberID,
			To:       s.ToMemberID,
			Amount:   s.Amount,
			Note:     s.Note,
			Category: s.Category,
		}
	}
	return snap.Group.MemberIDs(), expenses, settlements
}
