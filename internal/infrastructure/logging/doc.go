// Package logging provides structured logging built on zap.
//
// Production logs are JSON with ISO8601 timestamps; development logs
// are colored console output with stacktraces enabled.
package logging
