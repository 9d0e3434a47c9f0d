package service

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mihau1211/expense-share/internal/auth"
	"github.com/mihau1211/expense-share/internal/middleware"
	"github.com/mihau1211/expense-share/internal/settlement"
	"github.com/mihau1211/expense-share/internal/storage"
)

// Deps bundles the collaborators the HTTP surface is built from. Passing
// them explicitly keeps every handler free of ambient state.
type Deps struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWTManager    *auth.JWTManager
	Counting      settlement.Counting
}

// NewRouter builds the full route table. Registration and login are public;
// everything else sits behind the bearer-auth middleware.
func NewRouter(deps Deps) *mux.Router {
	users := NewUserService(deps.Store, deps.Authenticator, deps.JWTManager)
	expenses := NewExpenseService(deps.Store)
	transactions := NewTransactionService(deps.Store, deps.Counting)

	r := mux.NewRouter()
	r.HandleFunc("/users", users.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", users.Login).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.RequireAuth(deps.JWTManager, deps.Store))

	api.HandleFunc("/logout", users.Logout).Methods(http.MethodPost)
	api.HandleFunc("/users", users.List).Methods(http.MethodGet)
	api.HandleFunc("/users/me", users.Me).Methods(http.MethodGet)
	api.HandleFunc("/users/me", users.UpdateMe).Methods(http.MethodPatch)

	api.HandleFunc("/expenses", expenses.Create).Methods(http.MethodPost)
	api.HandleFunc("/expenses/me", expenses.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/expenses/me/own", expenses.ListOwn).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", expenses.Get).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", expenses.Update).Methods(http.MethodPatch)
	api.HandleFunc("/expenses/{id}/addUser", expenses.AddUser).Methods(http.MethodPatch)
	api.HandleFunc("/expenses/{id}/owed", transactions.Owed).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}/owed/byPayer", transactions.OwedByPayer).Methods(http.MethodGet)

	api.HandleFunc("/transactions", transactions.Create).Methods(http.MethodPost)
	api.HandleFunc("/transactions/me", transactions.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/transactions/me/{id}", transactions.Update).Methods(http.MethodPatch)
	api.HandleFunc("/transactions/{id}", transactions.Get).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", transactions.Delete).Methods(http.MethodDelete)

	return r
}
