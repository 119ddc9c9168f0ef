// Package api implements the HTTP surface of the bot management console.
//
// # Routes
//
// Registry and lifecycle:
//
//	GET    /api/bots
//	POST   /api/bots
//	GET    /api/bots/{id}
//	PATCH  /api/bots/{id}
//	DELETE /api/bots/{id}
//	POST   /api/bots/{id}/connect
//	POST   /api/bots/{id}/disconnect
//
// Read-through proxy over a live session:
//
//	GET  /api/bots/{id}/guilds
//	GET  /api/bots/{id}/guilds/{guildID}/channels
//	GET  /api/bots/{id}/channels/{channelID}/messages
//	POST /api/bots/{id}/channels/{channelID}/messages
//
// Built-in command introspection (available offline):
//
//	GET  /api/bots/{id}/commands
//	POST /api/bots/{id}/commands
//
// Plus POST /api/login and the unauthenticated /health endpoints.
//
// # Errors
//
// Every error response carries {"error": "...", "kind": "..."} where kind is
// one of not_found, invalid_input, not_connected, authentication_failed,
// forbidden, unauthorized or upstream_error. Bot tokens never appear in any
// response body.
package api
