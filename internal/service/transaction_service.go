package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/authz"
	"github.com/mihau1211/expense-share/internal/middleware"
	"github.com/mihau1211/expense-share/internal/models"
	"github.com/mihau1211/expense-share/internal/settlement"
	"github.com/mihau1211/expense-share/internal/storage"
)

// TransactionService handles payment records and the settlement read
// endpoints.
type TransactionService struct {
	store    storage.Store
	counting settlement.Counting
}

// NewTransactionService creates a new transaction service with the given
// settlement counting mode.
func NewTransactionService(store storage.Store, counting settlement.Counting) *TransactionService {
	return &TransactionService{store: store, counting: counting}
}

type createTransactionRequest struct {
	Name        string   `json:"name"`
	Expense     string   `json:"expense"`
	Value       *float64 `json:"value"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Users       []string `json:"users"`
}

// transactionResponse is the outward projection of a transaction. The payer
// and expense stay as IDs; the payment date renders as RFC 3339.
type transactionResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	Expense     string   `json:"expense"`
	Value       float64  `json:"value"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	Users       []string `json:"users,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func renderTransaction(transaction *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          transaction.ID,
		Name:        transaction.Name,
		Owner:       transaction.OwnerID,
		Expense:     transaction.ExpenseID,
		Value:       transaction.Value,
		Description: transaction.Description,
		Date:        time.Unix(transaction.Date, 0).UTC().Format(time.RFC3339),
		Users:       transaction.UserIDs,
		CreatedAt:   transaction.CreatedAt,
		UpdatedAt:   transaction.UpdatedAt,
	}
}

// Create handles POST /transactions. The actor becomes the payer; the
// referenced expense must exist and be accessible to the actor at creation
// time (it is not continuously re-validated).
func (s *TransactionService) Create(w http.ResponseWriter, r *http.Request) {
	const op = "Transaction create"
	userID := middleware.GetUserID(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(r, op, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" || req.Expense == "" || req.Value == nil {
		respondError(w, apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid"))
		return
	}
	if *req.Value < 0 {
		respondError(w, apperr.New(apperr.ErrValidation, op, "value must be non-negative"))
		return
	}
	if len(req.Description) > models.MaxDescriptionLength {
		respondError(w, apperr.New(apperr.ErrValidation, op, "description exceeds maximum length"))
		return
	}

	expense, err := s.store.GetExpense(r.Context(), req.Expense)
	if err != nil {
		respondError(w, err)
		return
	}
	if expense == nil {
		respondError(w, apperr.New(apperr.ErrConflict, op, fmt.Sprintf("Expense with id: %s not found", req.Expense)))
		return
	}
	if !authz.CanAccessExpense(userID, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unable to authorize access to Expense resource"))
		return
	}

	users := dedupe(req.Users)
	if err := validateSubParticipants(op, users, expense); err != nil {
		respondError(w, err)
		return
	}

	var date int64
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			respondError(w, apperr.New(apperr.ErrValidation, op, "date must be RFC 3339 formatted"))
			return
		}
		date = parsed.Unix()
	}

	transaction := &models.Transaction{
		Name:        req.Name,
		OwnerID:     userID,
		ExpenseID:   expense.ID,
		Value:       *req.Value,
		Description: req.Description,
		Date:        date,
		UserIDs:     users,
	}

	if err := s.store.CreateTransaction(r.Context(), transaction); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction created", "transaction_id", transaction.ID, "expense_id", expense.ID, "payer_id", userID)
	respondJSON(w, http.StatusCreated, map[string]transactionResponse{"transaction": renderTransaction(transaction)})
}

// validateSubParticipants checks that every sub-participant of a transaction
// already participates in the expense (the owner counts). The list is only
// validated here; the settlement arithmetic does not consume it.
func validateSubParticipants(op string, userIDs []string, expense *models.Expense) error {
	for _, id := range userIDs {
		if id != expense.OwnerID && !expense.HasUser(id) {
			return apperr.New(apperr.ErrValidation, op, fmt.Sprintf("User with id: %s is not a participant of the Expense", id))
		}
	}
	return nil
}

// ListMine handles GET /transactions/me: the actor's payments, optionally
// filtered by expense and sorted by a named field.
func (s *TransactionService) ListMine(w http.ResponseWriter, r *http.Request) {
	const op = "Transaction get"
	userID := middleware.GetUserID(r.Context())

	transactions, err := s.store.ListTransactions(r.Context(), storage.TransactionFilter{
		OwnerID:   userID,
		ExpenseID: r.URL.Query().Get("expense"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		order := r.URL.Query().Get("order")
		if order == "" {
			order = settlement.Asc
		}
		if err := settlement.SortTransactions(transactions, sortBy, order); err != nil {
			respondError(w, apperr.WithOp(op, err))
			return
		}
	}

	responses := make([]transactionResponse, len(transactions))
	for i, transaction := range transactions {
		responses[i] = renderTransaction(transaction)
	}
	respondJSON(w, http.StatusOK, responses)
}

// Get handles GET /transactions/{id}. Readable by anyone with access to the
// transaction's expense.
func (s *TransactionService) Get(w http.ResponseWriter, r *http.Request) {
	const op = "Transaction get by id"
	userID := middleware.GetUserID(r.Context())

	transaction, expense, err := s.loadTransaction(r, op)
	if err != nil {
		respondError(w, err)
		return
	}
	if !authz.CanAccessExpense(userID, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Transaction resource"))
		return
	}

	respondJSON(w, http.StatusOK, renderTransaction(transaction))
}

// Update handles PATCH /transactions/me/{id}. Payer only; allow-listed
// fields are overwritten verbatim.
func (s *TransactionService) Update(w http.ResponseWriter, r *http.Request) {
	const op = "Transaction update"
	userID := middleware.GetUserID(r.Context())

	fields, err := decodePatch(r, op, []string{"name", "description", "value", "date", "users"})
	if err != nil {
		respondError(w, err)
		return
	}

	transaction, expense, err := s.loadTransaction(r, op)
	if err != nil {
		respondError(w, err)
		return
	}
	if !authz.CanModifyTransaction(userID, transaction) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Transaction resource"))
		return
	}

	if err := applyTransactionPatch(op, transaction, expense, fields); err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), transaction); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction updated", "transaction_id", transaction.ID, "payer_id", userID)
	respondJSON(w, http.StatusNoContent, nil)
}

func applyTransactionPatch(op string, transaction *models.Transaction, expense *models.Expense, fields map[string]json.RawMessage) error {
	if raw, ok := fields["name"]; ok {
		name, err := patchString(op, raw)
		if err != nil {
			return err
		}
		if name == "" {
			return apperr.New(apperr.ErrValidation, op, "name must not be empty")
		}
		transaction.Name = name
	}

	if raw, ok := fields["description"]; ok {
		description, err := patchString(op, raw)
		if err != nil {
			return err
		}
		if len(description) > models.MaxDescriptionLength {
			return apperr.New(apperr.ErrValidation, op, "description exceeds maximum length")
		}
		transaction.Description = description
	}

	if raw, ok := fields["value"]; ok {
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return apperr.New(apperr.ErrValidation, op, "Given fields are invalid")
		}
		if value < 0 {
			return apperr.New(apperr.ErrValidation, op, "value must be non-negative")
		}
		transaction.Value = value
	}

	if raw, ok := fields["date"]; ok {
		dateStr, err := patchString(op, raw)
		if err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return apperr.New(apperr.ErrValidation, op, "date must be RFC 3339 formatted")
		}
		transaction.Date = parsed.Unix()
	}

	if raw, ok := fields["users"]; ok {
		var users []string
		if err := json.Unmarshal(raw, &users); err != nil {
			return apperr.New(apperr.ErrValidation, op, "Given fields are invalid")
		}
		users = dedupe(users)
		if err := validateSubParticipants(op, users, expense); err != nil {
			return err
		}
		transaction.UserIDs = users
	}

	return nil
}

// Delete handles DELETE /transactions/{id}. Allowed for the payer or the
// owner of the expense the payment belongs to.
func (s *TransactionService) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "Transaction delete"
	userID := middleware.GetUserID(r.Context())

	transaction, expense, err := s.loadTransaction(r, op)
	if err != nil {
		respondError(w, err)
		return
	}
	if !authz.CanDeleteTransaction(userID, transaction, expense) {
		respondError(w, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Transaction resource"))
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), transaction.ID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction deleted", "transaction_id", transaction.ID, "user_id", userID)
	respondJSON(w, http.StatusNoContent, nil)
}

// loadTransaction fetches the transaction from the path ID together with
// its expense. Existence checks precede every authorization check.
func (s *TransactionService) loadTransaction(r *http.Request, op string) (*models.Transaction, *models.Expense, error) {
	transaction, err := s.store.GetTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return nil, nil, err
	}
	if transaction == nil {
		return nil, nil, apperr.New(apperr.ErrNotFound, op, "Transaction not found")
	}

	expense, err := s.store.GetExpense(r.Context(), transaction.ExpenseID)
	if err != nil {
		return nil, nil, err
	}
	if expense == nil {
		return nil, nil, apperr.New(apperr.ErrNotFound, op, "Expense not found")
	}

	return transaction, expense, nil
}

// Owed handles GET /expenses/{id}/owed: how much the actor collectively
// owes across all other payers of the expense.
func (s *TransactionService) Owed(w http.ResponseWriter, r *http.Request) {
	const op = "Settlement get"
	userID := middleware.GetUserID(r.Context())

	expense, transactions, err := s.loadSettlementInput(r, op, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	owed, err := settlement.Owed(expense, transactions, userID, s.counting)
	if err != nil {
		respondError(w, apperr.WithOp(op, err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{"owed": owed})
}

// OwedByPayer handles GET /expenses/{id}/owed/byPayer: the same aggregation
// grouped by payer.
func (s *TransactionService) OwedByPayer(w http.ResponseWriter, r *http.Request) {
	const op = "Settlement get"
	userID := middleware.GetUserID(r.Context())

	expense, transactions, err := s.loadSettlementInput(r, op, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	owed, err := settlement.OwedByPayer(expense, transactions, userID, s.counting)
	if err != nil {
		respondError(w, apperr.WithOp(op, err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]map[string]float64{"owedByPayer": owed})
}

func (s *TransactionService) loadSettlementInput(r *http.Request, op, userID string) (*models.Expense, []*models.Transaction, error) {
	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return nil, nil, err
	}
	if expense == nil {
		return nil, nil, apperr.New(apperr.ErrNotFound, op, "Expense not found")
	}
	if !authz.CanAccessExpense(userID, expense) {
		return nil, nil, apperr.New(apperr.ErrAuthorization, op, "Unauthorized access to Expense resource")
	}

	transactions, err := s.store.ListTransactions(r.Context(), storage.TransactionFilter{ExpenseID: expense.ID})
	if err != nil {
		return nil, nil, err
	}

	return expense, transactions, nil
}
