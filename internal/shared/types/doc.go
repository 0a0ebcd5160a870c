// Package types defines the shared message and configuration types
// exchanged between the session core, the message router, and the
// hosting runtime.
//
// Core Types:
//   - Request: inbound view message, method name plus untyped params
//   - Reply: outbound fire-and-forget message to a view
//   - RuntimeConfig: per-Show host values embedded into bootstrap payloads
//   - StateRecord: a hub's persisted key/value slice
package types
