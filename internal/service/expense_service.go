package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/authz"
	"github.com/mihau1211/expense-share/internal/middleware"
	"github.com/mihau1211/expense-share/internal/models"
	"github.com/mihau1211/expense-share/internal/storage"
)

// ExpenseService handles expense group CRUD and participant management.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

type createExpenseRequest struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

type addUserRequest struct {
	User string `json:"user"`
}

// expenseResponse is the outward projection of an expense with owner and
// participants expanded to their public user projections.
type expenseResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	IsActive  bool                `json:"isActive"`
	Owner     models.PublicUser   `json:"owner"`
	Users     []models.PublicUser `json:"users"`
	CreatedAt int64               `json:"createdAt"`
	UpdatedAt int64               `json:"updatedAt"`
}

// Create handles POST /expenses. The actor becomes the owner; any listed
// participant must already exist.
func (s *ExpenseService) Create(w http.ResponseWriter, r *http.Request) {
	const op = "Expense create"
	userID := middleware.GetUserID(r.Context())

	var req createExpenseRequest
	if err := decodeJSON(r, op, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" {
		respondError(w, apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid"))
		return
	}

	users := dedupe(req.Users)
	for _, id := range users {
		user, err := s.store.GetUserByID(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		if user == nil {
			respondError(w, apperr.New(apperr.ErrConflict, op, fmt.Sprintf("User with id: %s not found", id)))
			return
		}
	}

	expense := &models.Expense{
		Name:     req.Name,
		IsActive: true,
		OwnerID:  userID,
		UserIDs:  users,
	}

	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		respondError(w, err)
		return
	}

	resp, err := s.expand(r.Context(), expense)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Expense created", "expense_id", expense.ID, "owner_id", userID)
	respondJSON(w, http.StatusCreated, map[string]expenseResponse{"expense": resp})
}

// ListMine handles GET /expenses/me: expenses owned by or shared with the
// actor, optionally filtered by isActive and name substring.
func (s *ExpenseService) ListMine(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.MemberID = middleware.GetUserID(r.Context())
	s.list(w, r, filter)
}

// ListOwn handles GET /expenses/me/own: expenses the actor owns, with the
// same optional filters.
func (s *ExpenseService) ListOwn(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.OwnerID = middleware.GetUserID(r.Context())
	s.list(w, r, filter)
}

func (s *ExpenseService) list(w http.ResponseWriter, r *http.Request, filter storage.ExpenseFilter) {
	expenses, err := s.store.ListExpenses(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]expenseResponse, len(expenses))
	for i, expense := range expenses {
		resp, err := s.expand(r.Context(), expense)
		if err != nil {
			respondError(w, err)
			return
		}
		responses[i] = resp
	}

	respondJSON(w, http.StatusOK, responses)
}

func filterFromQuery(r *http.Request) storage.ExpenseFilter {
	var filter storage.ExpenseFilter
	if v := r.URL.Query().Get("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.NameContains = r.URL.Query().Get("name")
	return filter
}

// Get handles GET /expenses/{id}. Existence is checked before
// authorization: an absent expense is a 404, an inaccessible one a 401.
func (s *ExpenseService) Get(w http.ResponseWriter, r *http.Request) {
	const op = "Expense get by id"
	userID := middleware.GetUserID(r.Context())

	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if expense == nil {
		respondError(w, apperr.New(apperr.ErrNotFound, op, "Expense not found"))
		return
	}
	if !authz.CanAccessExpense(userID, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Expense resource"))
		return
	}

	resp, err := s.expand(r.Context(), expense)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /expenses/{id}. Allow-listed fields only: name and
// isActive. The owner field is never updatable.
func (s *ExpenseService) Update(w http.ResponseWriter, r *http.Request) {
	const op = "Expense update"
	userID := middleware.GetUserID(r.Context())

	fields, err := decodePatch(r, op, []string{"name", "isActive"})
	if err != nil {
		respondError(w, err)
		return
	}

	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if expense == nil {
		respondError(w, apperr.New(apperr.ErrNotFound, op, "Expense not found"))
		return
	}
	if !authz.CanModifyExpense(userID, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Expense resource"))
		return
	}

	if raw, ok := fields["name"]; ok {
		name, err := patchString(op, raw)
		if err != nil {
			respondError(w, err)
			return
		}
		if name == "" {
			respondError(w, apperr.New(apperr.ErrValidation, op, "name must not be empty"))
			return
		}
		expense.Name = name
	}
	if raw, ok := fields["isActive"]; ok {
		var active bool
		if err := json.Unmarshal(raw, &active); err != nil {
			respondError(w, apperr.New(apperr.ErrValidation, op, "Given fields are invalid"))
			return
		}
		expense.IsActive = active
	}

	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "user_id", userID)
	respondJSON(w, http.StatusNoContent, nil)
}

// AddUser handles PATCH /expenses/{id}/addUser. Owner only; the user must
// exist and must not already be a participant.
func (s *ExpenseService) AddUser(w http.ResponseWriter, r *http.Request) {
	const op = "Expense update"
	userID := middleware.GetUserID(r.Context())

	var req addUserRequest
	if err := decodeJSON(r, op, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.User == "" {
		respondError(w, apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid"))
		return
	}

	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if expense == nil {
		respondError(w, apperr.New(apperr.ErrNotFound, op, "Expense not found"))
		return
	}
	if !authz.CanModifyExpense(userID, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Expense resource"))
		return
	}

	user, err := s.store.GetUserByID(r.Context(), req.User)
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil {
		respondError(w, apperr.New(apperr.ErrConflict, op, "User not found"))
		return
	}
	if expense.HasUser(user.ID) {
		respondError(w, apperr.New(apperr.ErrConflict, op, "Provided User is already part of Expense"))
		return
	}

	if err := s.store.AddExpenseUser(r.Context(), expense.ID, user.ID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Expense participant added", "expense_id", expense.ID, "user_id", user.ID)
	respondJSON(w, http.StatusNoContent, nil)
}

// expand resolves the owner and participant IDs into public user
// projections.
func (s *ExpenseService) expand(ctx context.Context, expense *models.Expense) (expenseResponse, error) {
	ids := append([]string{expense.OwnerID}, expense.UserIDs...)
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return expenseResponse{}, err
	}

	resp := expenseResponse{
		ID:        expense.ID,
		Name:      expense.Name,
		IsActive:  expense.IsActive,
		Users:     make([]models.PublicUser, 0, len(expense.UserIDs)),
		CreatedAt: expense.CreatedAt,
		UpdatedAt: expense.UpdatedAt,
	}
	if owner, ok := users[expense.OwnerID]; ok {
		resp.Owner = owner.Public()
	}
	for _, id := range expense.UserIDs {
		if user, ok := users[id]; ok {
			resp.Users = append(resp.Users, user.Public())
		}
	}

	return resp, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
