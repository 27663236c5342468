// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/spendwise/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMemberInUse is returned when removing a member that is still
	// referenced by an expense or a settlement.
	ErrMemberInUse = errors.New("member has expenses or settlements")

	// ErrEmailExists is returned when registering an email twice.
	ErrEmailExists = errors.New("email already registered")
)

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group together with its initial members.
	// Missing IDs and timestamps are filled in by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByOwner returns the groups owned by a user, newest first.
	ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error)

	// DeleteGroup removes a group and everything in it.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a member to an existing group.
	AddMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a single member.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// ListMembers returns a group's members in creation order.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// RemoveMember deletes a member. It fails with ErrMemberInUse if any
	// expense or settlement refers to the member.
	RemoveMember(ctx context.Context, memberID string) error
}

// ExpenseStore persists expenses and settlements.
type ExpenseStore interface {
	// CreateExpense persists an expense and its shares.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense and its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns a group's expenses, newest first. A non-empty
	// category restricts the result to that category.
	ListExpenses(ctx context.Context, groupID, category string) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its shares.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement appends a settlement. Settlements are never updated.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// GetSnapshot reads the group, its expenses and its settlements in one
	// read transaction.
	GetSnapshot(ctx context.Context, groupID string) (*models.Snapshot, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
