package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the durable key/value adapter underneath the session store and
// the credential holder. Documents are opaque bytes; whole-document
// overwrite, last writer wins.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Clear(key string) error
}

// Logical storage keys. Sessions and the credential have independent
// lifecycles: clearing one never touches the other.
const (
	StorageKeySessions   = "sessions"
	StorageKeyCredential = "api_key"
)

// FileStorage keeps one file per key under a data root.
//
// Layout:
//
//	<root>/sessions.json
//	<root>/api_key
type FileStorage struct {
	Root string
}

func DefaultDataRoot() string {
	// Prefer XDG data dir (Linux/macOS). If unavailable, fall back to ~/.local/share.
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "gemchat")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "gemchat")
	}
	return filepath.Join(os.TempDir(), "gemchat")
}

func NewFileStorage(root string) *FileStorage {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataRoot()
	}
	return &FileStorage{Root: root}
}

func (s *FileStorage) path(key string) string {
	name := key
	if key == StorageKeySessions {
		name = key + ".json"
	}
	return filepath.Join(s.Root, name)
}

func (s *FileStorage) Load(key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *FileStorage) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write never leaves a truncated
	// document behind.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStorage) Clear(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
