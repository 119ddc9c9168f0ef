// ABOUTME: Tests for health endpoints, auth enforcement, login and commands
// ABOUTME: Exercises the mux wiring end to end with the shared fixture

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdeck/botdeck/internal/auth"
	"github.com/botdeck/botdeck/internal/config"
)

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = f.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 sessions")

	id := f.createBot("support", "tok")
	f.connectBot(id)

	rec = f.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 sessions")
}

func TestAuthEnforcement(t *testing.T) {
	hash, err := auth.HashPassword("opsec")
	require.NoError(t, err)

	f := newFixture(t, func(cfg *config.Config) {
		cfg.Auth.JWTSecret = "test-secret"
		cfg.Auth.PasswordHash = hash
	})

	t.Run("health stays open", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/bots", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login exchanges password for a working token", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/login", map[string]string{"password": "opsec"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp loginResponse
		f.decode(rec, &resp)
		require.NotEmpty(t, resp.Token)

		rec = f.do(http.MethodGet, "/api/bots", nil, http.Header{
			"Authorization": []string{"Bearer " + resp.Token},
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/login", map[string]string{"password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthorized")
	})

	t.Run("missing password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/login", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginDisabled(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/login", map[string]string{"password": "anything"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enabled")
}

func TestListCommands(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown bot", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/bots/missing/commands", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("offline bot still lists commands", func(t *testing.T) {
		id := f.createBot("sleeper", "tok")

		rec := f.do(http.MethodGet, "/api/bots/"+id+"/commands", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var commands []commandResponse
		f.decode(rec, &commands)
		require.Len(t, commands, 4)
		assert.Equal(t, "/ping", commands[0].Name)
		assert.Equal(t, "Pong!", commands[0].Reply)
		assert.Equal(t, "offline", commands[1].Reply)
		assert.Equal(t, "not connected", commands[2].Reply)
	})

	t.Run("online bot reports live status", func(t *testing.T) {
		id := f.createBot("runner", "tok")
		f.connectBot(id)

		rec := f.do(http.MethodGet, "/api/bots/"+id+"/commands", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var commands []commandResponse
		f.decode(rec, &commands)
		require.Len(t, commands, 4)
		assert.Contains(t, commands[1].Reply, "online")
		assert.Contains(t, commands[2].Reply, "up ")
	})
}

func TestRunCommand(t *testing.T) {
	f := newFixture(t)
	id := f.createBot("cmdbot", "tok")

	run := func(command string) runCommandResponse {
		t.Helper()
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/commands", map[string]string{"command": command})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp runCommandResponse
		f.decode(rec, &resp)
		return resp
	}

	t.Run("ping", func(t *testing.T) {
		assert.Equal(t, "Pong!", run("/ping").Result)
	})

	t.Run("leading slash optional", func(t *testing.T) {
		assert.Equal(t, "Pong!", run("ping").Result)
	})

	t.Run("status and uptime while offline", func(t *testing.T) {
		assert.Equal(t, "offline", run("/status").Result)
		assert.Equal(t, "not connected", run("/uptime").Result)
	})

	t.Run("help", func(t *testing.T) {
		assert.Contains(t, run("/help").Result, "/ping")
	})

	t.Run("unknown command is not an error", func(t *testing.T) {
		assert.Contains(t, run("/dance").Result, "Unknown command")
	})

	t.Run("status and uptime while online", func(t *testing.T) {
		f.connectBot(id)
		assert.Contains(t, run("/status").Result, "online")
		assert.Contains(t, run("/uptime").Result, "up ")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/commands", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
	})

	t.Run("unknown bot", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/missing/commands", map[string]string{"command": "/ping"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
