// Package httputil provides response and cookie helpers shared by the
// HTTP feature handlers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// FieldErrors writes a validation error response carrying per-field
// messages alongside the top-level error string.
func FieldErrors(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, map[string]any{
		"error":  message,
		"fields": fields,
	})
}
