// Package apperr defines the domain error taxonomy and its mapping to
// client-visible HTTP responses.
//
// Every error produced by the services wraps one of the sentinel kinds below,
// so the boundary can translate it with errors.Is without inspecting message
// text. Messages carry the operation context ("Expense update: ...") the way
// the clients expect; raw storage errors never reach the caller.
package apperr

import (
	"errors"
	"net/http"
)

// Sentinel kinds. Services wrap these via New; the boundary maps them to
// status codes via HTTPStatus.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAuthorization  = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrInvalidState   = errors.New("invalid state")
)

// Error is a domain error carrying its kind and the operation it occurred in.
type Error struct {
	Kind error  // one of the sentinel kinds above
	Op   string // operation context, e.g. "Expense update"
	Msg  string // client-visible reason
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return e.Op + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates a domain error of the given kind.
func New(kind error, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// WithOp attaches an operation context to err. Domain errors keep their kind
// and message; anything else is wrapped as-is so the kind mapping still
// treats it as internal.
func WithOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Op: op, Msg: e.Msg}
	}
	return err
}

// HTTPStatus maps an error to the status code the boundary should respond
// with. Unknown errors are internal server errors.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for err. Authentication
// failures always render the same generic message to avoid user enumeration;
// unknown errors never leak internals.
func Message(err error) string {
	if errors.Is(err, ErrAuthentication) {
		return "Please authenticate."
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "internal server error"
}
