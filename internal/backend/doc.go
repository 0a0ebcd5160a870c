// Package backend holds the HTTP client for the monitored backend
// collaborator. View methods the router does not handle itself are
// forwarded here opaquely: request in, reply out, no interpretation.
package backend
