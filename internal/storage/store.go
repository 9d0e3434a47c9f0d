// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mihau1211/expense-share/internal/models"
)

// ExpenseFilter narrows expense listings. Zero values mean "no constraint".
type ExpenseFilter struct {
	// OwnerID restricts to expenses owned by this user.
	OwnerID string

	// MemberID restricts to expenses owned by or shared with this user.
	MemberID string

	// IsActive, when non-nil, restricts by the active flag.
	IsActive *bool

	// NameContains restricts to names containing this substring,
	// case-insensitively.
	NameContains string
}

// TransactionFilter narrows transaction listings. Zero values mean
// "no constraint".
type TransactionFilter struct {
	// OwnerID restricts to transactions paid by this user.
	OwnerID string

	// ExpenseID restricts to transactions of this expense.
	ExpenseID string
}

// Store defines the interface for persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. ID and timestamps are assigned if
	// empty. The user's email must be unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user (including held tokens) by ID.
	// Returns nil, nil if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user (including held tokens) by email.
	// Returns nil, nil if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Users that don't
	// exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser overwrites the user's mutable fields (name, password hash).
	UpdateUser(ctx context.Context, user *models.User) error

	// AddUserToken appends a session token to the user's held set.
	AddUserToken(ctx context.Context, userID, token string) error

	// ClearUserTokens removes every session token the user holds.
	ClearUserTokens(ctx context.Context, userID string) error

	// CreateExpense persists a new expense with its participant set.
	// ID and timestamps are assigned if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense (including participants) by ID.
	// Returns nil, nil if the expense does not exist.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpenses returns expenses matching the filter.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)

	// UpdateExpense overwrites the expense's mutable fields (name, isActive).
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// AddExpenseUser appends a participant to the expense.
	AddExpenseUser(ctx context.Context, expenseID, userID string) error

	// CreateTransaction persists a new transaction with its optional
	// sub-participant set. ID, date and timestamps are assigned if empty.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves a transaction by ID.
	// Returns nil, nil if the transaction does not exist.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns transactions matching the filter.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)

	// UpdateTransaction overwrites the transaction's mutable fields
	// (name, description, value, date, sub-participants).
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
