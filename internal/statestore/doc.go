// Package statestore adapts the process-wide persisted store into
// hub-namespaced key/value access.
//
// The global record named by GlobalStateKey is shared with other
// features; Write performs a read-modify-write merge of a single key
// under the hub's slice, so sibling keys are never clobbered. FileStore
// is the concrete storage backend: one JSON document, replaced
// atomically via temp-file rename.
package statestore
