package statestore

import (
	"fmt"
	"sync"

	"github.com/hubwatch/panelhost/internal/host"
)

// GlobalStateKey names the single global record shared across features.
// Hub slices nest under their hub identifier inside this record.
const GlobalStateKey = "panelhost.state"

// Adapter performs namespaced reads and merges against the process-wide
// persisted store. Writes are read-modify-write under a single mutex so
// a merge of one key is atomic and never drops sibling keys.
type Adapter struct {
	storage host.StateStorage
	mu      sync.Mutex
}

// NewAdapter creates a state store adapter over the given storage.
func NewAdapter(storage host.StateStorage) *Adapter {
	return &Adapter{storage: storage}
}

// Read returns the persisted record for a hub, or ok=false when none
// has been written yet.
func (a *Adapter) Read(hub string) (map[string]interface{}, bool, error) {
	record, found, err := a.storage.Get(GlobalStateKey)
	if err != nil {
		return nil, false, fmt.Errorf("read global state: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	slice, ok := record[hub].(map[string]interface{})
	if !ok {
		return nil, false, nil
	}
	return slice, true, nil
}

// Write merges value under key into the hub's record, creating the hub
// record if absent. Keys outside the hub's slice, including unrelated
// features' entries in the global record, are preserved verbatim.
func (a *Adapter) Write(hub, key string, value interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	record, found, err := a.storage.Get(GlobalStateKey)
	if err != nil {
		return fmt.Errorf("read global state: %w", err)
	}
	if !found || record == nil {
		record = make(map[string]interface{})
	}

	slice, ok := record[hub].(map[string]interface{})
	if !ok {
		slice = make(map[string]interface{})
	}
	slice[key] = value
	record[hub] = slice

	if err := a.storage.Set(GlobalStateKey, record); err != nil {
		return fmt.Errorf("persist global state: %w", err)
	}
	return nil
}
