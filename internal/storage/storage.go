// Package storage provides the injected key-value capability the issuer CLI
// uses for non-secret session state (issuer string, verify base URL, last
// revocation list path). Private key material must never go through here.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is an explicit get/set/remove capability. Callers receive one by
// injection; nothing in the signing or verification path depends on it.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set writes the value for key.
	Set(key, value string) error
	// Remove deletes the key; removing an absent key is a no-op.
	Remove(key string) error
}

// DefaultDir returns the per-user config directory for the issuer tools.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "carnet")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "carnet")
}

// FileStore keeps each key as a small file under dir.
type FileStore struct {
	dir string
}

// NewFileStore builds a store rooted at dir (DefaultDir when empty).
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(b)), true, nil
}

func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
