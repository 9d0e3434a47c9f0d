package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique, stored lowercase).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized outward.
	PasswordHash string

	// Tokens are the user's currently valid session tokens. A user may hold
	// several at once (one per device); logout clears the whole set.
	Tokens []string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}

// NewUser creates a user with the given identity and hashed password.
// ID and timestamps are assigned by the store on insert if left empty.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// PublicUser is the outward projection of a User: identity fields only.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the projection of the user safe to serialize.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// HoldsToken reports whether token is in the user's active session set.
func (u *User) HoldsToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Touch updates the modification timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().Unix()
}
