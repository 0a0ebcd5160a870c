// Package server is the concrete hosting runtime: an HTTP/WebSocket
// host for the session core.
//
// Endpoints:
//   - POST /hubs/:hub/show: create or reveal the hub's root view
//   - GET /hubs, /hubs/:hub/views, DELETE /hubs/:hub: session control
//   - GET /views/:id: a view's installed bootstrap payload
//   - GET /views/:id/stream: the view's Request/Reply websocket
//   - GET /assets/*: static bundle assets
//   - GET /health, /metrics
//
// Each view surface is a wsSurface: content served over HTTP, messages
// pumped on an attached websocket. A closed socket disposes the
// surface, which the session core observes through its disposal
// listeners.
package server
