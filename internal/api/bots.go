// ABOUTME: Bot registry CRUD and connect/disconnect lifecycle endpoints.
// ABOUTME: Responses never include the bot token, only id, name and status.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/botdeck/botdeck/internal/store"
)

// botResponse is the wire representation of a bot. The token is deliberately
// absent; it never crosses the HTTP boundary in either direction except on
// create and update requests.
type botResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func toBotResponse(bot *store.BotRecord) botResponse {
	return botResponse{
		ID:     bot.ID,
		Name:   bot.Name,
		Status: string(bot.State),
	}
}

type createBotRequest struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

type updateBotRequest struct {
	Name  *string `json:"name"`
	Token *string `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := s.store.ListBots(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]botResponse, 0, len(bots))
	for _, bot := range bots {
		resp = append(resp, toBotResponse(bot))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var req createBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeInvalid(w, "name is required")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeInvalid(w, "token is required")
		return
	}

	bot := &store.BotRecord{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Token: req.Token,
		State: store.StateOffline,
	}
	if err := s.store.CreateBot(r.Context(), bot); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("bot registered", "bot_id", bot.ID, "name", bot.Name)
	writeJSON(w, http.StatusCreated, toBotResponse(bot))
}

func (s *Server) handleGetBot(w http.ResponseWriter, r *http.Request) {
	bot, err := s.store.GetBot(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBotResponse(bot))
}

func (s *Server) handleUpdateBot(w http.ResponseWriter, r *http.Request) {
	var req updateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}

	upd := store.BotUpdate{Token: req.Token}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			writeInvalid(w, "name cannot be empty")
			return
		}
		upd.Name = &trimmed
	}
	if req.Token != nil && strings.TrimSpace(*req.Token) == "" {
		writeInvalid(w, "token cannot be empty")
		return
	}
	if upd.Name == nil && upd.Token == nil {
		writeInvalid(w, "no fields to update")
		return
	}

	// A changed token takes effect on the next connect; a live session keeps
	// running on the credential it was established with.
	bot, err := s.store.UpdateBot(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBotResponse(bot))
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.store.GetBot(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	// Tear the session down before the record goes away so the connection
	// does not outlive the registration.
	s.sessions.Disconnect(r.Context(), id)

	if err := s.store.DeleteBot(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.writeError(w, err)
		return
	}

	s.logger.Info("bot deleted", "bot_id", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleConnectBot(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Connect(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDisconnectBot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.store.GetBot(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.sessions.Disconnect(r.Context(), id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
