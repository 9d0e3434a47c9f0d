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

// CreateTransaction persists a new transaction and its optional
// sub-participant set.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if transaction.Date == 0 {
		transaction.Date = now
	}
	if transaction.CreatedAt == 0 {
		transaction.CreatedAt = now
	}
	if transaction.UpdatedAt == 0 {
		transaction.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, name, owner_id, expense_id, value, description, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		transaction.ID,
		transaction.Name,
		transaction.OwnerID,
		transaction.ExpenseID,
		transaction.Value,
		transaction.Description,
		transaction.Date,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, userID := range transaction.UserIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_users (transaction_id, user_id) VALUES (?, ?)",
			transaction.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction by ID, including its optional
// sub-participant set.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	transaction := &models.Transaction{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, expense_id, value, description, date, created_at, updated_at
		FROM transactions WHERE id = ?
	`, id).Scan(
		&transaction.ID,
		&transaction.Name,
		&transaction.OwnerID,
		&transaction.ExpenseID,
		&transaction.Value,
		&transaction.Description,
		&transaction.Date,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Transaction not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	userIDs, err := s.getTransactionUsers(ctx, transaction.ID)
	if err != nil {
		return nil, err
	}
	transaction.UserIDs = userIDs

	return transaction, nil
}

func (s *SQLiteStore) getTransactionUsers(ctx context.Context, transactionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM transaction_users WHERE transaction_id = ? ORDER BY user_id",
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction participants: %w", err)
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

// ListTransactions returns transactions matching the filter, newest first
// by payment date.
func (s *SQLiteStore) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]*models.Transaction, error) {
	query := `
		SELECT id, name, owner_id, expense_id, value, description, date, created_at, updated_at
		FROM transactions WHERE 1=1`
	var args []interface{}

	if filter.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.ExpenseID != "" {
		query += " AND expense_id = ?"
		args = append(args, filter.ExpenseID)
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		transaction := &models.Transaction{}
		if err := rows.Scan(
			&transaction.ID,
			&transaction.Name,
			&transaction.OwnerID,
			&transaction.ExpenseID,
			&transaction.Value,
			&transaction.Description,
			&transaction.Date,
			&transaction.CreatedAt,
			&transaction.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	for _, transaction := range transactions {
		userIDs, err := s.getTransactionUsers(ctx, transaction.ID)
		if err != nil {
			return nil, err
		}
		transaction.UserIDs = userIDs
	}

	return transactions, nil
}

// UpdateTransaction overwrites the transaction's mutable fields, replacing
// the sub-participant set wholesale.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, transaction *models.Transaction) error {
	transaction.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions SET name = ?, value = ?, description = ?, date = ?, updated_at = ?
		WHERE id = ?
	`,
		transaction.Name,
		transaction.Value,
		transaction.Description,
		transaction.Date,
		transaction.UpdatedAt,
		transaction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM transaction_users WHERE transaction_id = ?",
		transaction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear transaction participants: %w", err)
	}

	for _, userID := range transaction.UserIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_users (transaction_id, user_id) VALUES (?, ?)",
			transaction.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteTransaction removes a transaction. Sub-participant rows cascade.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
