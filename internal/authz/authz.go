// Package authz holds the access predicates for expenses and transactions.
//
// All predicates are pure functions over already-loaded entities. Existence
// of the entity is the caller's concern and is checked before authorization
// in every call site.
package authz

import "github.com/mihau1211/expense-share/internal/models"

// CanAccessExpense reports whether actor may read the expense: the owner or
// any listed participant.
func CanAccessExpense(actorID string, expense *models.Expense) bool {
	return expense.OwnerID == actorID || expense.HasUser(actorID)
}

// CanModifyExpense reports whether actor may mutate the expense. Only the
// owner may; participants have read access only.
func CanModifyExpense(actorID string, expense *models.Expense) bool {
	return expense.OwnerID == actorID
}

// CanModifyTransaction reports whether actor may mutate the transaction.
// Only the payer may.
func CanModifyTransaction(actorID string, transaction *models.Transaction) bool {
	return transaction.OwnerID == actorID
}

// CanDeleteTransaction reports whether actor may delete the transaction:
// the payer, or additionally the owner of the expense it belongs to.
func CanDeleteTransaction(actorID string, transaction *models.Transaction, expense *models.Expense) bool {
	return transaction.OwnerID == actorID || expense.OwnerID == actorID
}
