// ABOUTME: Operator login endpoint exchanging a password for a bearer token.
// ABOUTME: Only active when both jwt_secret and password_hash are configured.

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/botdeck/botdeck/internal/auth"
)

// tokenLifetime is how long an issued operator token stays valid.
const tokenLifetime = 24 * time.Hour

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil || s.cfg.Auth.PasswordHash == "" {
		writeErrorKind(w, http.StatusNotFound, kindNotFound, "login is not enabled")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	if req.Password == "" {
		writeInvalid(w, "password is required")
		return
	}

	if !auth.CheckPassword(s.cfg.Auth.PasswordHash, req.Password) {
		writeErrorKind(w, http.StatusUnauthorized, kindUnauthorized, "invalid password")
		return
	}

	token, err := s.verifier.Generate("operator", tokenLifetime)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
