package common

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"` // full error chain, non-production only
}

var exposeErrorDetails atomic.Bool

// SetExposeErrorDetails toggles the "detail" field on error responses.
// It is switched on outside production at startup.
func SetExposeErrorDetails(expose bool) {
	exposeErrorDetails.Store(expose)
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithDomainError derives the status and message from err.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: PublicMessage(err)}
	if exposeErrorDetails.Load() {
		resp.Detail = err.Error()
	}
	RespondWithJSON(w, HTTPStatusFromError(err), resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondNoContent writes a bare 204.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
