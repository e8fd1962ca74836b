package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error payload shape every endpoint returns. Clients match
// on Code; Message is for humans and Details carries optional structured
// context such as the offending field.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON encodes v to the response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders the canonical error envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	body := ErrorBody{Code: code, Message: message, Details: details}
	JSON(w, status, map[string]any{"error": body})
}
