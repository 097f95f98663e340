// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for spendsplit's persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	FriendshipStore
	GroupStore
	ExpenseStore
	LedgerStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field is populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID; missing IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// CategoryStore persists budget categories.
type CategoryStore interface {
	// CreateCategory persists a new category, populating its ID.
	CreateCategory(ctx context.Context, category *models.Category) error

	// CreateCategories persists a batch of categories in one transaction.
	CreateCategories(ctx context.Context, categories []*models.Category) error

	// ListCategories returns all categories owned by the user, sorted by name.
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)

	// GetCategory retrieves a category by ID scoped to its owner.
	GetCategory(ctx context.Context, id, userID string) (*models.Category, error)

	// UpdateCategoryBudget sets the budget of the user's category.
	UpdateCategoryBudget(ctx context.Context, id, userID string, budget decimal.Decimal) error
}

// TransactionStore persists personal income/expense transactions.
type TransactionStore interface {
	// CreateTransaction persists a new transaction, populating its ID.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves the user's transaction by ID.
	GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error)

	// ListTransactions returns all of the user's transactions, newest first.
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)

	// UpdateTransaction updates the user's transaction in place.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error

	// DeleteTransaction removes the user's transaction.
	DeleteTransaction(ctx context.Context, id, userID string) error
}

// FriendshipStore persists friend requests and connections.
type FriendshipStore interface {
	// CreateFriendship persists a new friend request, populating its ID.
	CreateFriendship(ctx context.Context, friendship *models.Friendship) error

	// GetFriendshipBetween finds any friendship connecting the two users in
	// either direction. Returns (nil, nil) when none exists.
	GetFriendshipBetween(ctx context.Context, userA, userB string) (*models.Friendship, error)

	// GetFriendship retrieves a friendship by ID.
	GetFriendship(ctx context.Context, id string) (*models.Friendship, error)

	// ListFriendships returns the user's friendships with the given status:
	// both directions for ACCEPTED, incoming only for PENDING.
	ListFriendships(ctx context.Context, userID string, status models.FriendshipStatus) ([]*models.Friendship, error)

	// UpdateFriendshipStatus transitions a friendship to the given status.
	UpdateFriendshipStatus(ctx context.Context, id string, status models.FriendshipStatus) error
}

// GroupStore persists groups and memberships.
type GroupStore interface {
	// CreateGroup persists a group together with its members in one
	// transaction, populating the group ID.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroupsByUser returns every group the user is a member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// IsGroupMember reports whether the user belongs to the group.
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
}

// ExpenseStore persists shared expenses with their participants.
type ExpenseStore interface {
	// CreateExpense persists an expense and its participants in one
	// transaction, populating the expense ID.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses with participants, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces the expense row and its whole participant set in
	// one transaction.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes the expense, its participants and any settlements
	// scoped to it.
	DeleteExpense(ctx context.Context, id string) error
}

// LedgerStore persists per-group running balances for the ledger accumulator.
type LedgerStore interface {
	// ApplyBalanceDeltas upserts each (user, delta) into the group's balances
	// within a single transaction: absent rows are created with the delta,
	// present rows are incremented by it. The per-row upsert is atomic so
	// concurrent expense creation cannot lose increments.
	ApplyBalanceDeltas(ctx context.Context, groupID string, deltas []models.UserAmount) error

	// ListGroupBalances returns every balance row for the group.
	ListGroupBalances(ctx context.Context, groupID string) ([]*models.GroupBalance, error)
}

// SettlementStore persists derived settlement recommendations.
type SettlementStore interface {
	// ReplaceSettlements deletes every settlement for the scope and inserts
	// the new set as PENDING rows, all in one transaction. Settlements are a
	// derived view; this wholesale replacement runs on every balance change.
	ReplaceSettlements(ctx context.Context, scope models.Scope, settlements []*models.Settlement) error

	// ListSettlements returns the scope's settlements, newest first.
	ListSettlements(ctx context.Context, scope models.Scope) ([]*models.Settlement, error)

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)

	// MarkSettlementPaid transitions a settlement to PAID.
	MarkSettlementPaid(ctx context.Context, id string) error
}
