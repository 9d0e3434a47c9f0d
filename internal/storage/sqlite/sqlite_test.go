package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mihau1211/expense-share/internal/models"
	"github.com/mihau1211/expense-share/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "expense-share-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createUser(t *testing.T, store *SQLiteStore, name, email string) *models.User {
	t.Helper()
	user := models.NewUser(name, email, "hashed-password")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUserStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser assigns ID and timestamps", func(t *testing.T) {
		user := createUser(t, store, "Bob", "bob@example.com")
		if user.ID == "" {
			t.Error("expected ID to be generated")
		}
		if user.CreatedAt == 0 || user.UpdatedAt == 0 {
			t.Error("expected timestamps to be set")
		}
	})

	t.Run("GetUserByEmail round-trips", func(t *testing.T) {
		created := createUser(t, store, "John", "john@example.com")

		user, err := store.GetUserByEmail(ctx, "john@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user == nil || user.ID != created.ID {
			t.Fatalf("got %+v, want user %s", user, created.ID)
		}
		if user.PasswordHash != "hashed-password" {
			t.Errorf("PasswordHash = %s", user.PasswordHash)
		}
	})

	t.Run("GetUserByID returns nil for missing user", func(t *testing.T) {
		user, err := store.GetUserByID(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil, got %+v", user)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		createUser(t, store, "Anna", "anna@example.com")
		dup := models.NewUser("Anna2", "anna@example.com", "other-hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("tokens append, load and clear", func(t *testing.T) {
		user := createUser(t, store, "Carol", "carol@example.com")

		if err := store.AddUserToken(ctx, user.ID, "token-1"); err != nil {
			t.Fatalf("AddUserToken failed: %v", err)
		}
		if err := store.AddUserToken(ctx, user.ID, "token-2"); err != nil {
			t.Fatalf("AddUserToken failed: %v", err)
		}

		loaded, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if len(loaded.Tokens) != 2 {
			t.Fatalf("Tokens = %v, want 2 entries", loaded.Tokens)
		}
		if !loaded.HoldsToken("token-1") || !loaded.HoldsToken("token-2") {
			t.Errorf("Tokens = %v", loaded.Tokens)
		}

		if err := store.ClearUserTokens(ctx, user.ID); err != nil {
			t.Fatalf("ClearUserTokens failed: %v", err)
		}
		loaded, err = store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if len(loaded.Tokens) != 0 {
			t.Errorf("Tokens after clear = %v", loaded.Tokens)
		}
	})

	t.Run("UpdateUser overwrites name and hash", func(t *testing.T) {
		user := createUser(t, store, "Dave", "dave@example.com")
		user.Name = "David"
		user.PasswordHash = "new-hash"

		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		loaded, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if loaded.Name != "David" || loaded.PasswordHash != "new-hash" {
			t.Errorf("loaded = %+v", loaded)
		}
	})
}

func TestExpenseStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "Bob", "bob@example.com")
	member := createUser(t, store, "John", "john@example.com")

	t.Run("create then fetch returns same name, owner and participants", func(t *testing.T) {
		expense := &models.Expense{
			Name:     "Holiday",
			IsActive: true,
			OwnerID:  owner.ID,
			UserIDs:  []string{member.ID},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Fatal("expected ID to be generated")
		}

		loaded, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if loaded.Name != "Holiday" || loaded.OwnerID != owner.ID || !loaded.IsActive {
			t.Errorf("loaded = %+v", loaded)
		}
		if len(loaded.UserIDs) != 1 || loaded.UserIDs[0] != member.ID {
			t.Errorf("UserIDs = %v", loaded.UserIDs)
		}
	})

	t.Run("GetExpense returns nil for missing expense", func(t *testing.T) {
		expense, err := store.GetExpense(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if expense != nil {
			t.Errorf("expected nil, got %+v", expense)
		}
	})

	t.Run("AddExpenseUser appends a participant", func(t *testing.T) {
		expense := &models.Expense{Name: "Dinner", IsActive: true, OwnerID: owner.ID}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.AddExpenseUser(ctx, expense.ID, member.ID); err != nil {
			t.Fatalf("AddExpenseUser failed: %v", err)
		}

		loaded, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if len(loaded.UserIDs) != 1 || loaded.UserIDs[0] != member.ID {
			t.Errorf("UserIDs = %v", loaded.UserIDs)
		}
	})

	t.Run("ListExpenses filters", func(t *testing.T) {
		other := createUser(t, store, "Anna", "anna@example.com")

		active := &models.Expense{Name: "Road trip", IsActive: true, OwnerID: other.ID, UserIDs: []string{member.ID}}
		inactive := &models.Expense{Name: "Old road trip", IsActive: false, OwnerID: other.ID}
		for _, e := range []*models.Expense{active, inactive} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		owned, err := store.ListExpenses(ctx, storage.ExpenseFilter{OwnerID: other.ID})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(owned) != 2 {
			t.Errorf("owned = %d expenses, want 2", len(owned))
		}

		isActive := true
		activeOnly, err := store.ListExpenses(ctx, storage.ExpenseFilter{OwnerID: other.ID, IsActive: &isActive})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(activeOnly) != 1 || activeOnly[0].ID != active.ID {
			t.Errorf("activeOnly = %+v", activeOnly)
		}

		// Member sees shared expenses, not the other's private ones.
		shared, err := store.ListExpenses(ctx, storage.ExpenseFilter{MemberID: member.ID, NameContains: "road"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(shared) != 1 || shared[0].ID != active.ID {
			t.Errorf("shared = %+v", shared)
		}

		// Substring match is case-insensitive.
		byName, err := store.ListExpenses(ctx, storage.ExpenseFilter{OwnerID: other.ID, NameContains: "ROAD"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(byName) != 2 {
			t.Errorf("byName = %d expenses, want 2", len(byName))
		}
	})

	t.Run("UpdateExpense overwrites name and active flag", func(t *testing.T) {
		expense := &models.Expense{Name: "Groceries", IsActive: true, OwnerID: owner.ID}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Name = "Weekly groceries"
		expense.IsActive = false
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		loaded, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if loaded.Name != "Weekly groceries" || loaded.IsActive {
			t.Errorf("loaded = %+v", loaded)
		}
	})
}

func TestTransactionStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "Bob", "bob@example.com")
	member := createUser(t, store, "John", "john@example.com")

	expense := &models.Expense{Name: "Holiday", IsActive: true, OwnerID: owner.ID, UserIDs: []string{member.ID}}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("create then fetch round-trips", func(t *testing.T) {
		transaction := &models.Transaction{
			Name:        "Taxi",
			OwnerID:     owner.ID,
			ExpenseID:   expense.ID,
			Value:       100,
			Description: "airport ride",
			UserIDs:     []string{member.ID},
		}
		if err := store.CreateTransaction(ctx, transaction); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if transaction.ID == "" || transaction.Date == 0 {
			t.Fatalf("defaults not assigned: %+v", transaction)
		}

		loaded, err := store.GetTransaction(ctx, transaction.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if loaded.Name != "Taxi" || loaded.Value != 100 || loaded.OwnerID != owner.ID {
			t.Errorf("loaded = %+v", loaded)
		}
		if len(loaded.UserIDs) != 1 || loaded.UserIDs[0] != member.ID {
			t.Errorf("UserIDs = %v", loaded.UserIDs)
		}
	})

	t.Run("ListTransactions filters by payer and expense", func(t *testing.T) {
		memberTx := &models.Transaction{Name: "Dinner", OwnerID: member.ID, ExpenseID: expense.ID, Value: 40}
		if err := store.CreateTransaction(ctx, memberTx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		byPayer, err := store.ListTransactions(ctx, storage.TransactionFilter{OwnerID: member.ID})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(byPayer) != 1 || byPayer[0].ID != memberTx.ID {
			t.Errorf("byPayer = %+v", byPayer)
		}

		byExpense, err := store.ListTransactions(ctx, storage.TransactionFilter{ExpenseID: expense.ID})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(byExpense) != 2 {
			t.Errorf("byExpense = %d transactions, want 2", len(byExpense))
		}
	})

	t.Run("UpdateTransaction replaces fields and sub-participants", func(t *testing.T) {
		transaction := &models.Transaction{Name: "Fuel", OwnerID: owner.ID, ExpenseID: expense.ID, Value: 60, UserIDs: []string{member.ID}}
		if err := store.CreateTransaction(ctx, transaction); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		transaction.Value = 75.5
		transaction.Description = "motorway"
		transaction.UserIDs = nil
		if err := store.UpdateTransaction(ctx, transaction); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}

		loaded, err := store.GetTransaction(ctx, transaction.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if loaded.Value != 75.5 || loaded.Description != "motorway" {
			t.Errorf("loaded = %+v", loaded)
		}
		if len(loaded.UserIDs) != 0 {
			t.Errorf("UserIDs = %v, want empty", loaded.UserIDs)
		}
	})

	t.Run("DeleteTransaction removes the record", func(t *testing.T) {
		transaction := &models.Transaction{Name: "Snacks", OwnerID: owner.ID, ExpenseID: expense.ID, Value: 12}
		if err := store.CreateTransaction(ctx, transaction); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		if err := store.DeleteTransaction(ctx, transaction.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}

		loaded, err := store.GetTransaction(ctx, transaction.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if loaded != nil {
			t.Errorf("expected nil after delete, got %+v", loaded)
		}
	})
}
