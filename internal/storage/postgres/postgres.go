// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New connects to dsn, runs migrations and returns a ready store.
// maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, dsn string, maxConns int) (*PostgresStore, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.HealthCheckPeriod = 15 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// inTx runs fn in a transaction, committing if it returns nil.
func (s *PostgresStore) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// deleteMemberError maps a failed member DELETE. A reference written after
// the count in RemoveMember surfaces here as a foreign key violation.
func deleteMemberError(memberID string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrMemberInUse)
	}
	return fmt.Errorf("failed to delete member: %w", err)
}

// CreateGroup persists a new group and its initial members.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO groups (id, name, owner_id, created_at) VALUES ($1, $2, $3, $4)",
			group.ID, group.Name, group.OwnerID, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for i := range group.Members {
			m := &group.Members[i]
			m.GroupID = group.ID
			if err := insertMember(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertMember(ctx context.Context, q querier, m *models.Member) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	_, err := q.Exec(ctx,
		"INSERT INTO members (id, group_id, display_name, created_at) VALUES ($1, $2, $3, $4)",
		m.ID, m.GroupID, m.DisplayName, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return getGroup(ctx, s.pool, groupID)
}

func getGroup(ctx context.Context, q querier, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := q.QueryRow(ctx,
		"SELECT id, name, owner_id, created_at FROM groups WHERE id = $1",
		groupID,
	).Scan(&group.ID, &group.Name, &group.OwnerID, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := listMembers(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

// ListGroupsByOwner returns all groups owned by a user, newest first.
func (s *PostgresStore) ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, owner_id, created_at FROM groups WHERE owner_id = $1 ORDER BY created_at DESC, seq DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Group, error) {
		g := &models.Group{}
		err := row.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}

	for _, g := range groups {
		members, err := listMembers(ctx, s.pool, g.ID)
		if err != nil {
			return nil, err
		}
		g.Members = members
	}
	return groups, nil
}

// DeleteGroup removes a group with its members, expenses and settlements.
func (s *PostgresStore) DeleteGroup(ctx context.Context, groupID string) error {
	return s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		statements := []string{
			"DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = $1)",
			"DELETE FROM expenses WHERE group_id = $1",
			"DELETE FROM settlements WHERE group_id = $1",
			"DELETE FROM members WHERE group_id = $1",
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, groupID); err != nil {
				return fmt.Errorf("failed to delete group: %w", err)
			}
		}
		tag, err := tx.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
		if err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
		}
		return nil
	})
}

// AddMember adds a member to an existing group.
func (s *PostgresStore) AddMember(ctx context.Context, member *models.Member) error {
	var exists int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM groups WHERE id = $1", member.GroupID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("group %s: %w", member.GroupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	return insertMember(ctx, s.pool, member)
}

// GetMember retrieves a member by ID.
func (s *PostgresStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	m := &models.Member{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, group_id, display_name, created_at FROM members WHERE id = $1",
		memberID,
	).Scan(&m.ID, &m.GroupID, &m.DisplayName, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers returns a group's members in creation order.
func (s *PostgresStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	return listMembers(ctx, s.pool, groupID)
}

func listMembers(ctx context.Context, q querier, groupID string) ([]models.Member, error) {
	rows, err := q.Query(ctx,
		"SELECT id, group_id, display_name, created_at FROM members WHERE group_id = $1 ORDER BY created_at, seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Member, error) {
		var m models.Member
		err := row.Scan(&m.ID, &m.GroupID, &m.DisplayName, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// RemoveMember deletes a member that no expense or settlement refers to.
func (s *PostgresStore) RemoveMember(ctx context.Context, memberID string) error {
	return s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var refs int
		err := tx.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM expenses WHERE paid_by = $1) +
				(SELECT COUNT(*) FROM expense_shares WHERE member_id = $1) +
				(SELECT COUNT(*) FROM settlements WHERE from_member_id = $1 OR to_member_id = $1)`,
			memberID,
		).Scan(&refs)
		if err != nil {
			return fmt.Errorf("failed to count member references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("member %s: %w", memberID, storage.ErrMemberInUse)
		}

		tag, err := tx.Exec(ctx, "DELETE FROM members WHERE id = $1", memberID)
		if err != nil {
			return deleteMemberError(memberID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
		}
		return nil
	})
}
