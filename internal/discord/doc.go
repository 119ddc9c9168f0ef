// Package discord implements the gateway capability interface on top of
// github.com/bwmarrin/discordgo. It owns no state beyond the live session
// handle; protocol compliance, heartbeats and REST rate limiting are
// handled by discordgo itself.
package discord
