// Package store provides the durable translation memory: a lazily loaded,
// TTL- and capacity-bounded map of content-addressed keys to cached
// translations, persisted through a pluggable key-value substrate.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StorageError indicates a durable-storage failure. These are always
// absorbed by the store and surface only through logging.
type StorageError struct {
	Op    string // "get" or "set"
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage is the durable key-value substrate. Get returns (nil, nil) when
// the key is absent. Implementations must not interpret the value; the
// store owns the serialization.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// FileStorage keeps each durable key in its own JSON file under a
// directory, permissions 0600.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file-backed storage rooted at dir. The
// directory is created on first write.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Get reads the value for key. A missing file is an absent key.
func (f *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes the value for key, creating the directory if needed.
func (f *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), value, 0o600)
}

func (f *FileStorage) path(key string) string {
	// Durable keys contain ':' which is not filename-safe everywhere.
	name := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

// Verify FileStorage implements Storage
var _ Storage = (*FileStorage)(nil)

// MemoryStorage is an in-memory Storage for tests. Configure the error
// fields before handing it to a store; debounced saves run on timer
// goroutines, so concurrent reads must go through SetCount/Value.
type MemoryStorage struct {
	mu     sync.Mutex
	Values map[string][]byte
	GetErr error
	SetErr error
	Sets   int
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Values: make(map[string][]byte)}
}

// Get returns the stored value or (nil, nil) when absent.
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.Values[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Set stores the value.
func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = value
	return nil
}

// SetCount reports how many times Set was called.
func (m *MemoryStorage) SetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sets
}

// Value returns the stored value for key.
func (m *MemoryStorage) Value(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Values[key]
}

// Verify MemoryStorage implements Storage
var _ Storage = (*MemoryStorage)(nil)
