package models

// Expense represents a named shared-bill group.
//
// The owner is set at creation and is immutable afterwards; only the owner
// may mutate the expense. Participants (UserIDs) gain read access and may
// record transactions against it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Name is the display name of the expense (e.g., "Holiday", "Flat bills").
	Name string

	// IsActive marks whether the expense is still collecting transactions.
	// Defaults to true at creation; toggled only by the owner.
	IsActive bool

	// OwnerID is the user who created the expense. Immutable.
	OwnerID string

	// UserIDs is the participant set, excluding duplicates. The owner is
	// not required to appear here; access checks treat the owner as a
	// participant regardless.
	UserIDs []string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}

// HasUser reports whether userID is in the participant set. The owner is not
// considered here; callers that want owner-or-participant semantics should
// use the authz predicates.
func (e *Expense) HasUser(userID string) bool {
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
