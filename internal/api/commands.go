// ABOUTME: Built-in command endpoints for a registered bot.
// ABOUTME: Local introspection only; works offline and never touches the network.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type commandResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Reply       string `json:"reply"`
}

type runCommandRequest struct {
	Command string `json:"command"`
}

type runCommandResponse struct {
	Result string `json:"result"`
}

// statusReplies computes the live /status and /uptime answers for a bot,
// falling back to offline wording when no ready session exists.
func (s *Server) statusReplies(botID string) (status, uptime string) {
	status = "offline"
	uptime = "not connected"
	if sess, ok := s.sessions.Session(botID); ok && sess.Handle.IsReady() {
		status = fmt.Sprintf("online, heartbeat %s", sess.Handle.Latency().Round(time.Millisecond))
		uptime = fmt.Sprintf("up %s", sess.Uptime().Round(time.Second))
	}
	return status, uptime
}

// handleListCommands lists the bot's built-in commands with the reply each
// would currently produce. The listing is available for offline bots too.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	bot, err := s.store.GetBot(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	statusReply, uptimeReply := s.statusReplies(bot.ID)

	commands := []commandResponse{
		{Name: "/ping", Description: "Check bot responsiveness", Reply: "Pong!"},
		{Name: "/status", Description: "Show connection status", Reply: statusReply},
		{Name: "/uptime", Description: "Show session uptime", Reply: uptimeReply},
		{Name: "/help", Description: "List available commands", Reply: "/ping, /status, /uptime, /help"},
	}

	writeJSON(w, http.StatusOK, commands)
}

// handleRunCommand executes one built-in command. Unknown commands get a
// friendly pointer to /help rather than an error; the only failures are an
// unknown bot id and a malformed body.
func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	bot, err := s.store.GetBot(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req runCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	command := strings.TrimSpace(req.Command)
	if command == "" {
		writeInvalid(w, "command is required")
		return
	}
	command = "/" + strings.TrimPrefix(command, "/")

	statusReply, uptimeReply := s.statusReplies(bot.ID)

	var result string
	switch command {
	case "/ping":
		result = "Pong!"
	case "/status":
		result = statusReply
	case "/uptime":
		result = uptimeReply
	case "/help":
		result = "Available commands: /ping, /status, /uptime, /help"
	default:
		result = fmt.Sprintf("Unknown command: %s. Try /help.", command)
	}

	writeJSON(w, http.StatusOK, runCommandResponse{Result: result})
}
