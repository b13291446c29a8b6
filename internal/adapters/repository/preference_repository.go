package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FilePreferenceRepository stores preferences in a small YAML state file
type FilePreferenceRepository struct {
	path   string
	mu     sync.RWMutex
	cache  map[string]bool
	loaded bool
}

// NewFilePreferenceRepository creates a store backed by path. The file is
// created on the first write.
func NewFilePreferenceRepository(path string) *FilePreferenceRepository {
	return &FilePreferenceRepository{
		path:  path,
		cache: make(map[string]bool),
	}
}

// Path returns the state file location
func (r *FilePreferenceRepository) Path() string {
	return r.path
}

// load reads the state file once. The caller must hold the write lock.
func (r *FilePreferenceRepository) load() error {
	if r.loaded {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	values := make(map[string]bool)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	r.cache = values
	r.loaded = true
	return nil
}

// GetBool returns the stored value, or false when unset
func (r *FilePreferenceRepository) GetBool(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return false, err
	}
	return r.cache[key], nil
}

// SetBool stores the value and flushes the file
func (r *FilePreferenceRepository) SetBool(ctx context.Context, key string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	r.cache[key] = value
	return r.flush()
}

// Reset forgets every stored preference
func (r *FilePreferenceRepository) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[string]bool)
	r.loaded = true
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

// flush writes the cache to disk. The caller must hold the write lock.
func (r *FilePreferenceRepository) flush() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(r.cache)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, r.path)
}
