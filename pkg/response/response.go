// Package response writes JSON bodies. Successful responses are the bare
// document or array; errors are {"message": "..."}.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/foodmate/pkg/logger"
)

type errorBody struct {
	Message string `json:"message"`
}

var internalError = []byte(`{"message":"internal server error"}` + "\n")

// JSON writes v with the given status. v is encoded before anything is
// written, so a value that cannot be encoded becomes a 500.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		logger.Error("response: encode failed", "status", status, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(internalError) //nolint:errcheck
		return
	}
	w.WriteHeader(status)
	w.Write(append(body, '\n')) //nolint:errcheck
}

// Success sends a 200 JSON response.
func Success(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Message: message})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized access")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "forbidden access")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "not found")
}
