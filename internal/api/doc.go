// Package api provides the HTTP and WebSocket surface for Nearwatch Core.
//
// The server exposes the scan controller, the device registry, baseline
// management, and session history over a REST API, and relays engine
// events to WebSocket clients.
//
// # Architecture
//
//	┌──────────────┐   REST    ┌─────────────────────┐
//	│  API Client  │──────────▶│  api.Server (chi)   │
//	└──────────────┘           │                     │
//	┌──────────────┐    WS     │  Hub ◀── events ────┼── broadcast.Broadcaster
//	│  WS Client   │──────────▶│                     │
//	└──────────────┘           └─────────────────────┘
//
// REST endpoints live under /api/v1 and are protected by an API key
// (X-API-Key header) when one is configured. WebSocket connections
// authenticate with a short-lived signed ticket obtained from
// POST /api/v1/auth/ws-ticket, so credentials never appear in URLs
// beyond the ticket's lifetime.
//
// The server bridges the engine's event broadcaster to the WebSocket
// hub: one subscriber consumes engine events and fans them out to every
// connected client subscribed to the matching channel (device_update,
// scan_started, scan_stopped, error).
package api
