package service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/mihau1211/expense-share/internal/apperr"
)

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError translates a domain error into its client-visible status and
// message. Unexpected errors are logged and rendered without detail.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Internal error", "error", err)
	}
	respondJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// decodeJSON decodes a request body into v, treating a missing or malformed
// body as a validation error for the given operation.
func decodeJSON(r *http.Request, op string, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid")
	}
	return nil
}

// decodePatch decodes an update body into a field set, rejecting empty
// bodies and fields outside the allow-list. Named fields are later
// overwritten verbatim; there are no merge semantics.
func decodePatch(r *http.Request, op string, allowed []string) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return nil, apperr.New(apperr.ErrValidation, op, "Required body is missing")
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperr.New(apperr.ErrValidation, op, "Required body is missing or invalid")
	}
	if len(fields) == 0 {
		return nil, apperr.New(apperr.ErrValidation, op, "Required body is missing")
	}

	for field := range fields {
		if !slices.Contains(allowed, field) {
			return nil, apperr.New(apperr.ErrValidation, op, "Given fields are invalid")
		}
	}

	return fields, nil
}

// patchString unmarshals a string field from a patch set.
func patchString(op string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperr.New(apperr.ErrValidation, op, "Given fields are invalid")
	}
	return s, nil
}
