package models

// MaxDescriptionLength bounds the free-text description of a transaction.
const MaxDescriptionLength = 300

// Transaction represents a single payment recorded against an Expense.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// Name is the display name of the payment (e.g., "Taxi").
	Name string

	// OwnerID is the payer: the user who recorded (and made) the payment.
	// Only the payer may mutate the transaction; the expense owner may
	// additionally delete it.
	OwnerID string

	// ExpenseID references the expense this payment belongs to. Checked to
	// exist at creation time, not continuously re-validated.
	ExpenseID string

	// Value is the monetary amount paid. Non-negative.
	Value float64

	// Description is optional free text, at most MaxDescriptionLength chars.
	Description string

	// Date is the Unix timestamp of the payment. Defaults to creation time.
	Date int64

	// UserIDs optionally narrows which users this payment is allocated
	// across. Validated at creation (each must be an expense participant)
	// but not yet consumed by the settlement arithmetic.
	UserIDs []string

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}
