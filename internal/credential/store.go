// Package credential holds the single persisted bearer credential slot.
// Absence of a value means the user is logged out.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the credential slot. Save replaces any prior value.
type Store interface {
	Load() (string, bool, error)
	Save(raw string) error
	Clear() error
}

// FileStore keeps the credential in a single file, by default ~/.biblio/token.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.biblio/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".biblio", "token"), nil
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credential.Load: %w", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", false, nil
	}
	return raw, true, nil
}

// Save writes raw to a temp file in the same directory and renames it over
// the slot, so readers never observe a partial credential.
func (s *FileStore) Save(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("credential.Save: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("credential.Save: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("credential.Save: %w", err)
	}
	if _, err := tmp.WriteString(raw); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("credential.Save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credential.Save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("credential.Save: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credential.Clear: %w", err)
	}
	return nil
}

// MemoryStore is an in-process slot.
type MemoryStore struct {
	mu  sync.Mutex
	raw string
}

// NewMemoryStore returns a slot pre-filled with raw; "" means empty.
func NewMemoryStore(raw string) *MemoryStore {
	return &MemoryStore{raw: raw}
}

func (s *MemoryStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw, s.raw != "", nil
}

func (s *MemoryStore) Save(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = ""
	return nil
}
