package service

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/auth"
	"github.com/mihau1211/expense-share/internal/middleware"
	"github.com/mihau1211/expense-share/internal/models"
	"github.com/mihau1211/expense-share/internal/storage"
)

// UserService handles registration, sessions and profile updates.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewUserService creates a new user service.
func NewUserService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Register handles POST /users.
func (s *UserService) Register(w http.ResponseWriter, r *http.Request) {
	const op = "User create"

	var req registerRequest
	if err := decodeJSON(r, op, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid"))
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Warn("Registration failed", "email", req.Email, "error", err)
		respondError(w, apperr.WithOp(op, err))
		return
	}

	token, err := s.issueToken(r, user)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	respondJSON(w, http.StatusCreated, sessionResponse{User: user.Public(), Token: token})
}

// Login handles POST /login.
func (s *UserService) Login(w http.ResponseWriter, r *http.Request) {
	const op = "User login"

	var req loginRequest
	if err := decodeJSON(r, op, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email)
		respondError(w, apperr.WithOp(op, err))
		return
	}

	token, err := s.issueToken(r, user)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	respondJSON(w, http.StatusOK, sessionResponse{User: user.Public(), Token: token})
}

// issueToken generates a session token and appends it to the user's held
// set, so it can later be revoked by logout.
func (s *UserService) issueToken(r *http.Request, user *models.User) (string, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return "", err
	}
	if err := s.store.AddUserToken(r.Context(), user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Logout handles POST /logout. It clears every session token the user
// holds; all previously issued tokens stop authenticating immediately.
func (s *UserService) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.store.ClearUserTokens(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("User logged out", "user_id", userID)
	respondJSON(w, http.StatusOK, struct{}{})
}

// List handles GET /users.
func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	public := make([]models.PublicUser, len(users))
	for i, user := range users {
		public[i] = user.Public()
	}
	respondJSON(w, http.StatusOK, public)
}

// Me handles GET /users/me.
func (s *UserService) Me(w http.ResponseWriter, r *http.Request) {
	const op = "User get"

	user, err := s.store.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil {
		respondError(w, apperr.New(apperr.ErrNotFound, op, "User not found"))
		return
	}

	respondJSON(w, http.StatusOK, user.Public())
}

// UpdateMe handles PATCH /users/me. Only name and password can change; the
// password runs through the same validate-then-hash pipeline as registration.
func (s *UserService) UpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "User update"

	fields, err := decodePatch(r, op, []string{"name", "password"})
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil {
		respondError(w, apperr.New(apperr.ErrNotFound, op, "User not found"))
		return
	}

	if err := s.applyUserPatch(user, fields); err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("User updated", "user_id", user.ID)
	respondJSON(w, http.StatusOK, map[string]models.PublicUser{"user": user.Public()})
}

func (s *UserService) applyUserPatch(user *models.User, fields map[string]json.RawMessage) error {
	const op = "User update"

	if raw, ok := fields["name"]; ok {
		name, err := patchString(op, raw)
		if err != nil {
			return err
		}
		if name == "" {
			return apperr.New(apperr.ErrValidation, op, "name must not be empty")
		}
		user.Name = name
	}

	if raw, ok := fields["password"]; ok {
		password, err := patchString(op, raw)
		if err != nil {
			return err
		}
		if err := s.authenticator.ValidateCredential(password); err != nil {
			return apperr.WithOp(op, err)
		}
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hashed
	}

	return nil
}
