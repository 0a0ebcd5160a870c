// Package bootstrap builds the initial content delivered to a view at
// creation or reveal time.
//
// The payload embeds, deterministically:
//   - the view's identity and persisted state as script-level bindings
//   - the runtime configuration as a single binding
//   - an integer flag for supplementary visualization availability
//   - stylesheet links and deferred script tags for every discovered
//     asset, rewritten through the hosting runtime's asset resolver
//
// Asset discovery is manifest-driven (YAML + glob patterns) with a
// sorted, reproducible order; the inlined runtime chunk is skipped.
package bootstrap
