// Package gateway defines the boundary between the console and the remote
// chat platform client.
//
// The Dialer and Handle interfaces describe exactly the capabilities the
// session manager and proxy API need: authenticated connect, readiness and
// disconnect notification, and on-demand fetch/send of guilds, channels
// and messages. The Guild/Channel/Message types are read-through
// projections of whatever the platform currently reports; nothing here is
// an authoritative copy, and callers must not assume values stay valid
// between requests.
//
// The production implementation lives in internal/discord. Tests substitute
// in-memory fakes, which is the reason this boundary exists as an
// interface rather than a concrete client.
package gateway
