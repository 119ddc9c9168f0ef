// ABOUTME: JSON response helpers and the error taxonomy mapping for the console API.
// ABOUTME: Translates sentinel errors from lower layers into status codes and kinds.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/botdeck/botdeck/internal/gateway"
	"github.com/botdeck/botdeck/internal/session"
	"github.com/botdeck/botdeck/internal/store"
)

// Error kinds returned in the "kind" field of error responses.
const (
	kindNotFound      = "not_found"
	kindInvalidInput  = "invalid_input"
	kindNotConnected  = "not_connected"
	kindAuthFailed    = "authentication_failed"
	kindForbidden     = "forbidden"
	kindUnauthorized  = "unauthorized"
	kindUpstreamError = "upstream_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorKind writes an error response with an explicit status and kind.
func writeErrorKind(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// writeInvalid writes a 400 invalid_input response.
func writeInvalid(w http.ResponseWriter, msg string) {
	writeErrorKind(w, http.StatusBadRequest, kindInvalidInput, msg)
}

// writeError classifies err against the sentinel errors of the store,
// session, and gateway layers and writes the matching response. Anything
// unclassified is reported as an upstream error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErrorKind(w, http.StatusNotFound, kindNotFound, "bot not found")
	case errors.Is(err, gateway.ErrNotFound):
		writeErrorKind(w, http.StatusNotFound, kindNotFound, "not found")
	case errors.Is(err, session.ErrNotConnected):
		writeErrorKind(w, http.StatusBadRequest, kindNotConnected, "bot is not connected")
	case errors.Is(err, gateway.ErrAuthFailed):
		writeErrorKind(w, http.StatusBadRequest, kindAuthFailed, "discord rejected the bot token")
	case errors.Is(err, gateway.ErrForbidden):
		writeErrorKind(w, http.StatusForbidden, kindForbidden, "bot lacks permission for this operation")
	case errors.Is(err, session.ErrConnectFailed):
		writeErrorKind(w, http.StatusBadGateway, kindUpstreamError, "failed to connect to discord")
	default:
		s.logger.Error("request failed", "error", err)
		writeErrorKind(w, http.StatusBadGateway, kindUpstreamError, "upstream request failed")
	}
}
