// Package client is a small HTTP client for the console API, backing the
// CLI's health and bots subcommands.
package client
