package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"studydesk/internal/util"
)

// FileStore is a single-file key-value store for database-less runs. Reads
// always go back to the file, so a write from another process is visible on
// the very next Get. Every Set re-reads the file, merges the key, and
// rewrites the whole file atomically (temp + rename). Concurrent writers to
// the same key still race last-write-wins, there is no cross-process lock.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.readLocked()
	if err != nil {
		return err
	}
	m[key] = value
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	return util.WriteTextAtomic(s.path, string(raw))
}

func (s *FileStore) readLocked() (map[string]string, error) {
	m := map[string]string{}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode state file %s: %w", s.path, err)
		}
	}
	return m, nil
}
