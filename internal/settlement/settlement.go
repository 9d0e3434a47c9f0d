// Package settlement computes reimbursement amounts for an expense from its
// recorded transactions.
//
// Every transaction's value is divided evenly across the expense's
// participant count. A transaction's own sub-participant list is validated at
// creation time but deliberately not consumed by the division; the field is
// reserved until per-transaction allocation is a product decision.
package settlement

import (
	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/models"
)

// Counting selects how an expense's participant count is determined.
// Whether the owner is implicitly a participant is an explicit configuration
// choice rather than an assumption.
type Counting int

const (
	// CountOwnerAlways counts the owner as a participant even when not
	// listed in the participant set. This is the server default.
	CountOwnerAlways Counting = iota

	// CountListedOnly counts only the explicitly listed participants.
	CountListedOnly
)

// ParticipantCount returns the divisor for the expense under the given
// counting mode.
func ParticipantCount(expense *models.Expense, mode Counting) int {
	count := len(expense.UserIDs)
	if mode == CountOwnerAlways && !expense.HasUser(expense.OwnerID) {
		count++
	}
	return count
}

// Owed returns how much userID collectively owes across all other payers:
// the sum of value/participantCount over every transaction whose payer is
// not userID.
//
// Fails with an invalid-state error when the participant count is zero;
// plain floating-point division otherwise, no rounding.
func Owed(expense *models.Expense, transactions []*models.Transaction, userID string, mode Counting) (float64, error) {
	count := ParticipantCount(expense, mode)
	if count == 0 {
		return 0, apperr.New(apperr.ErrInvalidState, "", "expense has no participants to divide between")
	}

	var owed float64
	for _, transaction := range transactions {
		if transaction.OwnerID == userID {
			continue
		}
		owed += transaction.Value / float64(count)
	}

	return owed, nil
}

// OwedByPayer returns the same aggregation as Owed grouped by payer: a map
// from payer ID to the amount userID owes that payer.
func OwedByPayer(expense *models.Expense, transactions []*models.Transaction, userID string, mode Counting) (map[string]float64, error) {
	count := ParticipantCount(expense, mode)
	if count == 0 {
		return nil, apperr.New(apperr.ErrInvalidState, "", "expense has no participants to divide between")
	}

	owed := make(map[string]float64)
	for _, transaction := range transactions {
		if transaction.OwnerID == userID {
			continue
		}
		owed[transaction.OwnerID] += transaction.Value / float64(count)
	}

	return owed, nil
}
