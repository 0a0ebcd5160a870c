// Package monitoring provides Prometheus metrics for sessions, view
// surfaces, and router dispatch. Each Metrics instance owns a private
// registry exposed via Handler.
package monitoring
