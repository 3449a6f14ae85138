package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RenderError writes err in the canonical error envelope. Errors that
// are not *Error render as an opaque 500.
func RenderError(w http.ResponseWriter, err error) {
	var reqErr *Error
	if !errors.As(err, &reqErr) {
		reqErr = E(http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	JSON(w, reqErr.Status, map[string]any{"error": reqErr})
}
