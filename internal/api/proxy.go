// ABOUTME: Read-through proxy endpoints over a bot's live gateway session.
// ABOUTME: Guild/channel/message listings and message send, nothing cached.

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"github.com/botdeck/botdeck/internal/gateway"
	"github.com/botdeck/botdeck/internal/session"
)

// maxMessageLength is the platform's content limit for a single message.
const maxMessageLength = 2000

type guildResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	MemberCount int    `json:"member_count"`
}

type channelResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Position int    `json:"position"`
}

type authorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	IsBot    bool   `json:"is_bot"`
}

type attachmentResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type messageResponse struct {
	ID          string               `json:"id"`
	Content     string               `json:"content"`
	ContentHTML string               `json:"content_html"`
	Author      authorResponse       `json:"author"`
	Timestamp   time.Time            `json:"timestamp"`
	Attachments []attachmentResponse `json:"attachments"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// liveHandle resolves the bot's live, ready gateway handle. An unknown bot
// reports not found; a known bot without a ready session reports not
// connected.
func (s *Server) liveHandle(r *http.Request, botID string) (gateway.Handle, error) {
	if _, err := s.store.GetBot(r.Context(), botID); err != nil {
		return nil, err
	}
	sess, ok := s.sessions.Session(botID)
	if !ok || !sess.Handle.IsReady() {
		return nil, session.ErrNotConnected
	}
	return sess.Handle, nil
}

// renderMarkdown converts message content to HTML for display. A render
// failure falls back to an empty string rather than failing the request.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func toMessageResponse(m gateway.Message) messageResponse {
	attachments := make([]attachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, attachmentResponse{
			ID:       a.ID,
			URL:      a.URL,
			Filename: a.Filename,
		})
	}
	return messageResponse{
		ID:          m.ID,
		Content:     m.Content,
		ContentHTML: renderMarkdown(m.Content),
		Author: authorResponse{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Avatar:   m.Author.Avatar,
			IsBot:    m.Author.IsBot,
		},
		Timestamp:   m.Timestamp,
		Attachments: attachments,
	}
}

func (s *Server) handleListGuilds(w http.ResponseWriter, r *http.Request) {
	handle, err := s.liveHandle(r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	guilds, err := handle.Guilds(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]guildResponse, 0, len(guilds))
	for _, g := range guilds {
		resp = append(resp, guildResponse{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        g.Icon,
			MemberCount: g.MemberCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	handle, err := s.liveHandle(r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	channels, err := handle.Channels(r.Context(), r.PathValue("guildID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Only text channels are browsable from the console, ordered the way
	// the platform's sidebar orders them.
	resp := make([]channelResponse, 0, len(channels))
	for _, c := range channels {
		if c.Kind != gateway.ChannelText {
			continue
		}
		resp = append(resp, channelResponse{
			ID:       c.ID,
			Name:     c.Name,
			ParentID: c.ParentID,
			Position: c.Position,
		})
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].Position < resp[j].Position })

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	handle, err := s.liveHandle(r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	channelID := r.PathValue("channelID")
	ch, err := handle.Channel(r.Context(), channelID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ch.Kind != gateway.ChannelText {
		writeInvalid(w, "not a text channel")
		return
	}

	messages, err := handle.Messages(r.Context(), channelID, s.cfg.Discord.MessageLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The platform returns newest first; the console renders a transcript,
	// so flip to oldest first.
	resp := make([]messageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		resp = append(resp, toMessageResponse(messages[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	if req.Content == "" {
		writeInvalid(w, "content is required")
		return
	}
	if utf8.RuneCountInString(req.Content) > maxMessageLength {
		writeInvalid(w, "content exceeds 2000 characters")
		return
	}

	handle, err := s.liveHandle(r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	channelID := r.PathValue("channelID")
	ch, err := handle.Channel(r.Context(), channelID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ch.Kind != gateway.ChannelText {
		writeInvalid(w, "not a text channel")
		return
	}

	msg, err := handle.Send(r.Context(), channelID, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(*msg))
}
