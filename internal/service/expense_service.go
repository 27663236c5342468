package service

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/internal/storage"
	"github.com/mmynk/spendwise/pkg/api"
	"github.com/mmynk/spendwise/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService: expenses and the
// append-only settlement ledger.
type ExpenseService struct {
	store storage.Store
	settings
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, opts ...Option) *ExpenseService {
	return &ExpenseService{store: store, settings: newSettings(opts)}
}

func requireMembers(group *models.Group, ids ...string) error {
	for _, id := range ids {
		if !group.HasMember(id) {
			return invalidArgument("%q is not a member of group %s", id, group.ID)
		}
	}
	return nil
}

// buildShares turns the request's split into shares that sum exactly to the
// expense amount.
func (s *ExpenseService) buildShares(group *models.Group, msg *api.AddExpenseRequest) ([]models.Share, error) {
	var shares []calculator.Share
	if len(msg.Shares) > 0 {
		for _, sh := range msg.Shares {
			if sh.Amount.IsZero() {
				continue
			}
			shares = append(shares, calculator.Share{MemberID: sh.MemberID, Amount: sh.Amount})
		}
		if err := calculator.ValidateShares(msg.Amount, shares, s.shareTolerance); err != nil {
			return nil, err
		}
		absorbRounding(shares, msg.Amount)
	} else {
		between := msg.SplitAmong
		if len(between) == 0 {
			between = group.MemberIDs()
		}
		var err error
		if shares, err = calculator.SplitEqual(msg.Amount, between); err != nil {
			return nil, err
		}
	}

	out := make([]models.Share, len(shares))
	for i, sh := range shares {
		if err := requireMembers(group, sh.MemberID); err != nil {
			return nil, err
		}
		out[i] = models.Share{MemberID: sh.MemberID, Amount: sh.Amount}
	}
	return out, nil
}

// absorbRounding moves the difference between total and the shares' sum
// onto the largest share, so stored expenses always conserve.
func absorbRounding(shares []calculator.Share, total money.Amount) {
	var sum money.Amount
	largest := 0
	for i, sh := range shares {
		sum += sh.Amount
		if sh.Amount > shares[largest].Amount {
			largest = i
		}
	}
	shares[largest].Amount += total - sum
}

// AddExpense records an expense paid by one member and split between members.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	msg := req.Msg
	s.logger.Info("AddExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"category", msg.Category,
		"paid_by", msg.PaidBy,
	)

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument("description required")
	}
	if !msg.Amount.IsPositive() {
		return nil, invalidArgument("amount must be positive, got %s", msg.Amount)
	}

	group, _, err := ownedGroup(ctx, s.store, msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireMembers(group, msg.PaidBy); err != nil {
		return nil, err
	}

	shares, err := s.buildShares(group, msg)
	if err != nil {
		s.logger.Warn("AddExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	category := strings.TrimSpace(msg.Category)
	if category == "" {
		category = calculator.DefaultCategory
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: description,
		Amount:      msg.Amount,
		Category:    category,
		PaidBy:      msg.PaidBy,
		Shares:      shares,
		Date:        msg.Date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Expense added", "group_id", group.ID, "expense_id", expense.ID, "shares_count", len(shares))
	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses, optionally for one category.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	s.logger.Info("ListExpenses request received", "group_id", req.Msg.GroupID, "category", req.Msg.Category)

	if _, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.GroupID, strings.TrimSpace(req.Msg.Category))
	if err != nil {
		s.logger.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// DeleteExpense removes an expense from a group.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	s.logger.Info("DeleteExpense request received", "group_id", req.Msg.GroupID, "expense_id", req.Msg.ExpenseID)

	if _, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if expense.GroupID != req.Msg.GroupID {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("expense %s: %w", req.Msg.ExpenseID, storage.ErrNotFound))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Expense deleted", "group_id", req.Msg.GroupID, "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// RecordSettlement appends a payment from one member to another. A
// settlement made for a category only adjusts that category's balances
// besides the overall ones.
func (s *ExpenseService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	msg := req.Msg
	s.logger.Info("RecordSettlement request received",
		"group_id", msg.GroupID,
		"from", msg.FromMemberID,
		"to", msg.ToMemberID,
		"amount", msg.Amount,
		"category", msg.Category,
	)

	if msg.FromMemberID == "" || msg.ToMemberID == "" {
		return nil, invalidArgument("from_member_id and to_member_id required")
	}
	if msg.FromMemberID == msg.ToMemberID {
		return nil, invalidArgument("cannot settle with yourself")
	}
	if !msg.Amount.IsPositive() {
		return nil, invalidArgument("amount must be positive, got %s", msg.Amount)
	}

	group, userID, err := ownedGroup(ctx, s.store, msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireMembers(group, msg.FromMemberID, msg.ToMemberID); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(msg.Category)
	note := strings.TrimSpace(msg.Note)
	if note == "" {
		note = calculator.NoteForCategory(category)
	}

	settlement := &models.Settlement{
		GroupID:      group.ID,
		FromMemberID: msg.FromMemberID,
		ToMemberID:   msg.ToMemberID,
		Amount:       msg.Amount,
		Note:         note,
		Category:     category,
		CreatedBy:    userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		s.logger.Error("RecordSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Settlement recorded", "group_id", group.ID, "settlement_id", settlement.ID)
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements returns the group's settlement history, newest first.
func (s *ExpenseService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	s.logger.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	if _, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
