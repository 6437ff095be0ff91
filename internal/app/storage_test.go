package app

import (
	"bytes"
	"testing"
)

func storageImpls(t *testing.T) map[string]Storage {
	t.Helper()
	sqlite, err := NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite storage: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Storage{
		"file":   NewFileStorage(t.TempDir()),
		"sqlite": sqlite,
	}
}

func TestStorageSaveLoadClear(t *testing.T) {
	for name, storage := range storageImpls(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := storage.Load(StorageKeySessions); err != ErrNotFound {
				t.Fatalf("expected ErrNotFound for missing key, got %v", err)
			}

			want := []byte(`{"some":"document"}`)
			if err := storage.Save(StorageKeySessions, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := storage.Load(StorageKeySessions)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("load mismatch: got %q want %q", got, want)
			}

			// Overwrite, last writer wins.
			want = []byte(`{"replaced":true}`)
			if err := storage.Save(StorageKeySessions, want); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err = storage.Load(StorageKeySessions)
			if err != nil {
				t.Fatalf("load after overwrite: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("overwrite mismatch: got %q want %q", got, want)
			}

			if err := storage.Clear(StorageKeySessions); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := storage.Load(StorageKeySessions); err != ErrNotFound {
				t.Fatalf("expected ErrNotFound after clear, got %v", err)
			}
			// Clearing an absent key is a no-op.
			if err := storage.Clear(StorageKeySessions); err != nil {
				t.Fatalf("second clear: %v", err)
			}
		})
	}
}

func TestStorageKeysAreIndependent(t *testing.T) {
	for name, storage := range storageImpls(t) {
		t.Run(name, func(t *testing.T) {
			if err := storage.Save(StorageKeySessions, []byte(`{}`)); err != nil {
				t.Fatalf("save sessions: %v", err)
			}
			if err := storage.Save(StorageKeyCredential, []byte("secret")); err != nil {
				t.Fatalf("save credential: %v", err)
			}
			if err := storage.Clear(StorageKeyCredential); err != nil {
				t.Fatalf("clear credential: %v", err)
			}
			if _, err := storage.Load(StorageKeySessions); err != nil {
				t.Fatalf("clearing credential must not touch sessions: %v", err)
			}
		})
	}
}
