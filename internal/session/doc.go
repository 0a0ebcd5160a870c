// Package session owns the view lifecycle for monitored hubs.
//
// A Session groups exactly one root view with an unbounded set of
// drill-down child views. The hosting runtime owns the rendered
// surfaces; the session holds non-owning handles, reacts to external
// disposal and view-state events, and disposes each surface exactly
// once during Cleanup.
//
// Lifecycle:
//  1. Show creates (or reveals) the root view and installs its
//     bootstrap payload from current persisted state
//  2. OpenInNewWindow requests open child views with empty state and a
//     title of the form Instance '<identity>'
//  3. runtime disposal of a child removes it from the child set
//  4. runtime disposal of the root, or Cleanup, tears down everything
//     (children first) and fires the teardown callback once
//
// Invariants: at most one root per session; a child never outlives the
// session that created it; Cleanup is idempotent.
package session
