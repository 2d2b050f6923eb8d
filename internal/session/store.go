package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fileMode = 0600
	dirMode  = 0700
)

// Record is the persisted login state.
type Record struct {
	Token     string    `json:"token"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists a single Record.
type Store interface {
	// Load returns the zero Record when nothing is stored.
	Load() (Record, error)
	Save(Record) error
	Clear() error
}

// FileStore keeps the record as a JSON file readable only by its owner.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: path is empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("session: read: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Record{}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("session: parse %s: %w", s.path, err)
	}
	return rec, nil
}

// Save writes the record atomically: temp file, fsync, rename.
func (s *FileStore) Save(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("session: open tmp: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("session: write tmp: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("session: sync tmp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: close tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove: %w", err)
	}
	return nil
}

// MemoryStore keeps the record in memory only.
type MemoryStore struct {
	rec Record
}

func (m *MemoryStore) Load() (Record, error) { return m.rec, nil }
func (m *MemoryStore) Save(r Record) error   { m.rec = r; return nil }
func (m *MemoryStore) Clear() error          { m.rec = Record{}; return nil }
