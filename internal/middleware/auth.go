package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mihau1211/expense-share/internal/auth"
	"github.com/mihau1211/expense-share/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// TokenKey is the context key for storing the presented bearer token.
	TokenKey contextKey = "token"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetToken extracts the presented bearer token from the context.
// Returns empty string if not found.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// UserLoader is the subset of storage needed to resolve an authenticated user.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth returns a middleware that validates bearer tokens and requires
// authentication. A token is accepted only if its signature is valid AND the
// user still holds it; logging out clears the held set and immediately
// invalidates every previously issued token.
func RequireAuth(jwtManager *auth.JWTManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				unauthenticated(w)
				return
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				unauthenticated(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				slog.Error("RequireAuth: failed to load user", "user_id", claims.UserID, "error", err)
				unauthenticated(w)
				return
			}
			if user == nil || !user.HoldsToken(tokenString) {
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, TokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// unauthenticated writes the generic authentication failure body. The reason
// is intentionally withheld to avoid user enumeration.
func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Please authenticate."})
}
