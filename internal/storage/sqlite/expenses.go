package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mihau1211/expense-share/internal/models"
	"github.com/mihau1211/expense-share/internal/storage"
)

// CreateExpense persists a new expense and its participant set.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, name, is_active, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		expense.ID, expense.Name, expense.IsActive, expense.OwnerID, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, userID := range expense.UserIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_users (expense_id, user_id) VALUES (?, ?)",
			expense.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its participant set.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, is_active, owner_id, created_at, updated_at FROM expenses WHERE id = ?",
		id,
	).Scan(&expense.ID, &expense.Name, &expense.IsActive, &expense.OwnerID, &expense.CreatedAt, &expense.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Expense not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	userIDs, err := s.getExpenseUsers(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.UserIDs = userIDs

	return expense, nil
}

func (s *SQLiteStore) getExpenseUsers(ctx context.Context, expenseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_users WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return userIDs, nil
}

// ListExpenses returns expenses matching the filter, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := "SELECT id, name, is_active, owner_id, created_at, updated_at FROM expenses WHERE 1=1"
	var args []interface{}

	if filter.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.MemberID != "" {
		query += " AND (owner_id = ? OR id IN (SELECT expense_id FROM expense_users WHERE user_id = ?))"
		args = append(args, filter.MemberID, filter.MemberID)
	}
	if filter.IsActive != nil {
		query += " AND is_active = ?"
		args = append(args, *filter.IsActive)
	}
	if filter.NameContains != "" {
		query += " AND instr(lower(name), lower(?)) > 0"
		args = append(args, filter.NameContains)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.Name,
			&expense.IsActive,
			&expense.OwnerID,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	for _, expense := range expenses {
		userIDs, err := s.getExpenseUsers(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
		expense.UserIDs = userIDs
	}

	return expenses, nil
}

// UpdateExpense overwrites the expense's mutable fields.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	_, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET name = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, expense.Name, expense.IsActive, expense.UpdatedAt, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	return nil
}

// AddExpenseUser appends a participant to the expense.
func (s *SQLiteStore) AddExpenseUser(ctx context.Context, expenseID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expense_users (expense_id, user_id) VALUES (?, ?)",
		expenseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add expense participant: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE expenses SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch expense: %w", err)
	}

	return nil
}
