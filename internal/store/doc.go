// Package store persists the bot registry.
//
// Two implementations are provided: MemoryStore, a volatile in-process map
// used by default and in tests, and SQLiteStore, which keeps bot records in
// a SQLite database via modernc.org/sqlite for operators who want the
// registry to survive restarts.
//
// Connection state is a runtime fact, not durable data: SQLiteStore resets
// every bot to offline on startup, since no session can outlive the process.
package store
