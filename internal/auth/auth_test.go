package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mihau1211/expense-share/internal/models"
)

// memStorage is an in-memory UserStorage for authenticator tests.
type memStorage struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemStorage() *memStorage {
	return &memStorage{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (m *memStorage) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return m.byID[id], nil
}

func TestRegisterHashesPassword(t *testing.T) {
	a := NewPasswordAuthenticator(newMemStorage())

	user, err := a.Register(context.Background(), "Bob", "Bob@Example.com", "BobPwd1@xyz")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Email != "bob@example.com" {
		t.Errorf("email not normalized: %s", user.Email)
	}
	if user.PasswordHash == "BobPwd1@xyz" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("BobPwd1@xyz")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := NewPasswordAuthenticator(newMemStorage())
	ctx := context.Background()

	if _, err := a.Register(ctx, "Bob", "bob@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password error = %v", err)
	}
	if _, err := a.Register(ctx, "Bob", "not-an-email", "BobPwd1@xyz"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email error = %v", err)
	}

	if _, err := a.Register(ctx, "Bob", "bob@example.com", "BobPwd1@xyz"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "Bob2", "bob@example.com", "OtherPwd1@"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v", err)
	}
}

// failingStorage simulates a storage outage on email lookups.
type failingStorage struct {
	memStorage
	lookupErr error
}

func (f *failingStorage) GetUserByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, f.lookupErr
}

func TestRegisterPropagatesLookupFailure(t *testing.T) {
	storage := &failingStorage{memStorage: *newMemStorage(), lookupErr: errors.New("connection reset")}
	a := NewPasswordAuthenticator(storage)

	_, err := a.Register(context.Background(), "Bob", "bob@example.com", "BobPwd1@xyz")
	if err == nil {
		t.Fatal("expected the lookup failure to propagate")
	}
	if !errors.Is(err, storage.lookupErr) {
		t.Errorf("error = %v, want wrapped lookup failure", err)
	}
	if errors.Is(err, ErrEmailExists) {
		t.Error("a storage failure must not masquerade as a duplicate email")
	}
	if len(storage.byEmail) != 0 {
		t.Error("no user must be created when the uniqueness check fails")
	}
}

func TestAuthenticate(t *testing.T) {
	a := NewPasswordAuthenticator(newMemStorage())
	ctx := context.Background()

	registered, err := a.Register(ctx, "Bob", "bob@example.com", "BobPwd1@xyz")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := a.Authenticate(ctx, "bob@example.com", "BobPwd1@xyz")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("authenticated wrong user: %s", user.ID)
	}

	if _, err := a.Authenticate(ctx, "bob@example.com", "WrongPwd1@"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "BobPwd1@xyz"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-at-least-32-bytes", time.Hour)
	user := &models.User{ID: "user-1", Email: "bob@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %s, want %s", claims.Email, user.Email)
	}
}

func TestJWTRejectsForgedAndExpired(t *testing.T) {
	m := NewJWTManager("test-secret-key-at-least-32-bytes", time.Hour)
	other := NewJWTManager("a-completely-different-secret-key", time.Hour)
	user := &models.User{ID: "user-1", Email: "bob@example.com"}

	forged, err := other.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("forged token error = %v", err)
	}

	expiredManager := NewJWTManager("test-secret-key-at-least-32-bytes", -time.Minute)
	expired, err := expiredManager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v", err)
	}

	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v", err)
	}
}
