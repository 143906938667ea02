package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the canonical error payload shape returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error using the canonical envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{Code: code, Message: message, Details: details},
	})
}

// JSONAppError renders an AppError, falling back to a generic 500 when the
// error carries no status.
func JSONAppError(w http.ResponseWriter, err *AppError) {
	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	JSONError(w, status, err.Code, err.Message, nil)
}
