package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/internal/storage"
)

// CreateExpense persists an expense and its shares in one transaction.
func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	return s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO expenses (id, group_id, description, amount, category, paid_by, date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount.Cents(),
			expense.Category, expense.PaidBy, expense.Date, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		batch := &pgx.Batch{}
		for i, share := range expense.Shares {
			batch.Queue(
				"INSERT INTO expense_shares (expense_id, member_id, amount, position) VALUES ($1, $2, $3, $4)",
				expense.ID, share.MemberID, share.Amount.Cents(), i,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert expense shares: %w", err)
		}
		return nil
	})
}

const expenseColumns = "id, group_id, description, amount, category, paid_by, date, created_at"

func scanExpense(row pgx.Row) (*models.Expense, error) {
	e := &models.Expense{}
	var amount int64
	if err := row.Scan(&e.ID, &e.GroupID, &e.Description, &amount, &e.Category, &e.PaidBy, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = money.FromCents(amount)
	return e, nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *PostgresStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	e, err := scanExpense(s.pool.QueryRow(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = $1", expenseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT member_id, amount FROM expense_shares WHERE expense_id = $1 ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	e.Shares, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Share, error) {
		var share models.Share
		var amount int64
		err := row.Scan(&share.MemberID, &amount)
		share.Amount = money.FromCents(amount)
		return share, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense shares: %w", err)
	}
	return e, nil
}

// ListExpenses returns a group's expenses, newest first, optionally for one category.
func (s *PostgresStore) ListExpenses(ctx context.Context, groupID, category string) ([]*models.Expense, error) {
	return listExpenses(ctx, s.pool, groupID, category)
}

func listExpenses(ctx context.Context, q querier, groupID, category string) ([]*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE group_id = $1"
	shareQuery := `SELECT s.expense_id, s.member_id, s.amount
		FROM expense_shares s JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = $1`
	args := []any{groupID}
	if category != "" {
		query += " AND category = $2"
		shareQuery += " AND e.category = $2"
		args = append(args, category)
	}
	query += " ORDER BY date DESC, created_at DESC, seq DESC"
	shareQuery += " ORDER BY s.expense_id, s.position"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}
	byID := make(map[string]*models.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}

	shareRows, err := q.Query(ctx, shareQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var expenseID string
		var share models.Share
		var amount int64
		if err := shareRows.Scan(&expenseID, &share.MemberID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		share.Amount = money.FromCents(amount)
		if e, ok := byID[expenseID]; ok {
			e.Shares = append(e.Shares, share)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its shares.
func (s *PostgresStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GetSnapshot reads a group with its expenses and settlements from one
// repeatable-read snapshot.
func (s *PostgresStore) GetSnapshot(ctx context.Context, groupID string) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := s.inTx(ctx, opts, func(tx pgx.Tx) error {
		var err error
		if snap.Group, err = getGroup(ctx, tx, groupID); err != nil {
			return err
		}
		if snap.Expenses, err = listExpenses(ctx, tx, groupID, ""); err != nil {
			return err
		}
		snap.Settlements, err = listSettlements(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// CreateSettlement appends a settlement to the group's ledger.
func (s *PostgresStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.SettledAt == 0 {
		settlement.SettledAt = time.Now().Unix()
	}

	var note *string
	if settlement.Note != "" {
		note = &settlement.Note
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO settlements (id, group_id, from_member_id, to_member_id, amount, note, category, settled_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		settlement.ID, settlement.GroupID, settlement.FromMemberID, settlement.ToMemberID,
		settlement.Amount.Cents(), note, settlement.Category, settlement.SettledAt, settlement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest first.
func (s *PostgresStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return listSettlements(ctx, s.pool, groupID)
}

func listSettlements(ctx context.Context, q querier, groupID string) ([]*models.Settlement, error) {
	rows, err := q.Query(ctx,
		`SELECT id, group_id, from_member_id, to_member_id, amount, note, category, settled_at, created_by
		 FROM settlements WHERE group_id = $1 ORDER BY settled_at DESC, seq DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	settlements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Settlement, error) {
		st := &models.Settlement{}
		var amount int64
		var note *string
		err := row.Scan(&st.ID, &st.GroupID, &st.FromMemberID, &st.ToMemberID,
			&amount, &note, &st.Category, &st.SettledAt, &st.CreatedBy)
		st.Amount = money.FromCents(amount)
		if note != nil {
			st.Note = *note
		}
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan settlements: %w", err)
	}
	if len(settlements) == 0 {
		return nil, nil
	}
	return settlements, nil
}
