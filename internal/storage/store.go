// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services depend on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group with its members.
	// group.ID, group.CreatedAt and empty member IDs are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members in membership order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsByMember retrieves the groups a member belongs to.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// AddGroupMembers appends members to a group. Existing members are kept as-is.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error

	// DeleteGroup removes a group and its expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists a new expense.
	// expense.ID, expense.CreatedAt and an unset Date are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its payer and split entries.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses in the order they were recorded.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// MarkExpenseSettled sets the expense's settled flag. Settling is one-way and
	// settling an already settled expense is a no-op.
	MarkExpenseSettled(ctx context.Context, expenseID string) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
