// Package host declares the capability interfaces the hosting runtime
// supplies to the session core: view surfaces, asset URI resolution,
// the save dialog, user notification, and the process-wide persisted
// store.
//
// The core never owns the rendered surface object; it holds Surface
// handles and reacts to runtime-driven disposal and view-state events.
// Concrete implementations live in internal/server (HTTP/WebSocket
// runtime) and in test fakes.
package host
