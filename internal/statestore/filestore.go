package statestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// FileStore is a JSON file rendition of the process-wide persisted
// store. The whole store is one document keyed by record name; writes
// go through a temp file and rename so readers never observe a partial
// merge.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store at path. The parent directory is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the record stored under key, or found=false.
func (f *FileStore) Get(key string) (map[string]interface{}, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	store, err := f.load()
	if err != nil {
		return nil, false, err
	}
	record, ok := store[key].(map[string]interface{})
	if !ok {
		return nil, false, nil
	}
	return record, true, nil
}

// Set replaces the record stored under key, leaving other keys intact.
func (f *FileStore) Set(key string, record map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	store, err := f.load()
	if err != nil {
		return err
	}
	store[key] = record

	data, err := sonic.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// load reads the whole store document. A missing file is an empty store.
func (f *FileStore) load() (map[string]interface{}, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	store := make(map[string]interface{})
	if len(data) > 0 {
		if err := sonic.Unmarshal(data, &store); err != nil {
			return nil, fmt.Errorf("decode state file: %w", err)
		}
	}
	return store, nil
}
