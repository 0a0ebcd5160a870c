// Package router dispatches inbound view requests by method name.
//
// Method Table (View → Host):
//   - IAmReady: liveness signal after the view's script boots
//   - PersistState: merge one key into the hub's persisted record
//   - OpenInNewWindow: open a drill-down child view
//   - SaveAs: user-driven export of an opaque payload
//
// Anything else is offered to the backend collaborator as an opaque
// pass-through; methods nobody claims are a deliberate no-op so host
// and view versions can skew without breaking each other.
//
// Requests from one view are dispatched in arrival order; different
// views interleave freely.
package router
