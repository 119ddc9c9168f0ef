// Package config handles configuration loading for botdeck.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BOTDECK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/botdeck/botdeck.yaml
//  3. ~/.config/botdeck/botdeck.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${BOTDECK_JWT_SECRET}"
//
// # Example
//
//	server:
//	  http_addr: "127.0.0.1:8390"
//	database:
//	  driver: sqlite
//	  path: "~/.local/share/botdeck/botdeck.db"
//	discord:
//	  connect_timeout: "15s"
//	  message_limit: 50
//	logging:
//	  level: info
//	  format: text
package config
