// Package session manages live gateway connections for registered bots.
//
// # Overview
//
// The Manager owns the mapping from bot id to its live connection handle.
// This map is the single source of truth for "which bots are connected":
// a bot is online exactly when an entry exists here and its handle reports
// ready. The registry's connection state column mirrors this map but never
// drives it.
//
// # State machine
//
// Per bot id:
//
//	Offline --Connect--> Connecting --success--> Online
//	Connecting --failure/timeout--> Offline
//	Online --Disconnect (explicit or adapter-pushed)--> Offline
//
// No other transitions are valid. A Connect that races an in-flight
// attempt for the same id waits for that attempt instead of starting a
// second login, so at most one connection per bot ever exists.
//
// # Adapter-pushed disconnects
//
// The Manager registers a disconnect callback on every handle it stores.
// When the platform drops the connection, the callback removes the map
// entry and marks the bot offline, producing the same end state as an
// explicit Disconnect. Requests that lose this race observe a missing
// session and fail with ErrNotConnected rather than touching a dead handle.
package session
