package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shelfwatch/backend/internal/domain"
)

// File is a key-value store persisted as a single JSON document on disk.
// The whole document is rewritten on every mutation via a temp file and
// rename, so a crash mid-write leaves the previous document intact.
type File struct {
	path  string
	data  map[string]string
	mutex sync.RWMutex
}

// NewFile opens a file-backed store at path, loading any existing document.
// A missing file starts the store empty; the parent directory is created
// if needed.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	f := &File{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			return nil, fmt.Errorf("failed to parse store file: %w", err)
		}
	}
	return f, nil
}

// Get retrieves the value for a key
func (f *File) Get(ctx context.Context, key string) (string, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	value, exists := f.data[key]
	if !exists {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value under a key and persists the document
func (f *File) Set(ctx context.Context, key, value string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	previous, existed := f.data[key]
	f.data[key] = value
	if err := f.persist(); err != nil {
		if existed {
			f.data[key] = previous
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Remove deletes a key and persists the document. Removing an absent key
// is not an error and does not touch the disk.
func (f *File) Remove(ctx context.Context, key string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	previous, existed := f.data[key]
	if !existed {
		return nil
	}
	delete(f.data, key)
	if err := f.persist(); err != nil {
		f.data[key] = previous
		return err
	}
	return nil
}

// Keys returns all stored keys in no particular order
func (f *File) Keys(ctx context.Context) ([]string, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		keys = append(keys, key)
	}
	return keys, nil
}

// persist writes the document to a temp file and renames it into place.
// Callers must hold the write lock.
func (f *File) persist() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to encode store document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
