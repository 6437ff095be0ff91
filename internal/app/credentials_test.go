package app

import (
	"io"
	"testing"
)

func TestCredentialsRejectBlank(t *testing.T) {
	creds := NewCredentials(NewFileStorage(t.TempDir()), NewLogger(io.Discard))

	for _, input := range []string{"", "   ", "\t\n"} {
		if err := creds.Save(input); err != ErrBlankCredential {
			t.Fatalf("Save(%q): expected ErrBlankCredential, got %v", input, err)
		}
	}
	if _, ok := creds.Current(); ok {
		t.Fatalf("blank save must leave state absent")
	}
}

func TestCredentialsSaveClearTransitions(t *testing.T) {
	creds := NewCredentials(NewFileStorage(t.TempDir()), NewLogger(io.Discard))

	var states []CredentialState
	creds.Subscribe(func(state CredentialState, _ string) {
		states = append(states, state)
	})

	if err := creds.Save("  my-key  "); err != nil {
		t.Fatalf("save: %v", err)
	}
	key, ok := creds.Current()
	if !ok || key != "my-key" {
		t.Fatalf("expected trimmed key present, got %q ok=%v", key, ok)
	}

	if err := creds.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := creds.Current(); ok {
		t.Fatalf("expected absent after clear")
	}

	want := []CredentialState{CredentialPresent, CredentialAbsent}
	if len(states) != len(want) {
		t.Fatalf("observer transitions mismatch: got %v want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("observer transitions mismatch: got %v want %v", states, want)
		}
	}
}

func TestCredentialsPersistAcrossInstances(t *testing.T) {
	storage := NewFileStorage(t.TempDir())
	logger := NewLogger(io.Discard)

	first := NewCredentials(storage, logger)
	if err := first.Save("durable-key"); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewCredentials(storage, logger)
	key, ok := second.Current()
	if !ok || key != "durable-key" {
		t.Fatalf("expected key to survive restart, got %q ok=%v", key, ok)
	}
}

func TestCredentialLifecycleIndependentOfSessions(t *testing.T) {
	storage := NewFileStorage(t.TempDir())
	logger := NewLogger(io.Discard)
	sessions := NewSessionStore(storage, defaultGreeting, logger)
	creds := NewCredentials(storage, logger)

	sessions.Create()
	if err := creds.Save("key"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := creds.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	reloaded := NewSessionStore(storage, defaultGreeting, logger)
	if reloaded.Len() != 1 {
		t.Fatalf("clearing the credential must not clear sessions, got %d", reloaded.Len())
	}
}
