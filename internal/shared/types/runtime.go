package types

// RuntimeConfig holds the small immutable set of host values embedded
// into a view's bootstrap payload. Computed once per Show, never persisted.
type RuntimeConfig struct {
	Theme           string          `json:"theme"`
	TimeDisplayMode string          `json:"timeDisplayMode"`
	ViewMode        string          `json:"viewMode"`
	Features        map[string]bool `json:"features,omitempty"`
}

// StateRecord is a hub's persisted slice: a flat key/value mapping that
// lives under the hub's key inside the process-wide global record.
type StateRecord = map[string]interface{}

// ViewInfo describes one tracked view for status endpoints.
type ViewInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Identity string `json:"identity"`
	Root     bool   `json:"root"`
}
