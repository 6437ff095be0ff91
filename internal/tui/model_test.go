package tui

import (
	"io"
	"testing"

	"gemchat/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) *MainModel {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.DataDir = t.TempDir()
	application, err := app.New(cfg, app.Options{MockClient: true, LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })
	return New(application)
}

func TestKeyEntryShownWhenNoCredential(t *testing.T) {
	m := newTestModel(t)
	if m.overlay != overlayKeyEntry {
		t.Fatalf("expected key entry overlay on first run without a credential")
	}
}

func TestEscDismissesKeyEntryAndAbandonsPending(t *testing.T) {
	m := newTestModel(t)

	if err := m.app.Dispatcher.Submit(t.Context(), "parked"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.app.Dispatcher.Pending() != "parked" {
		t.Fatalf("expected parked message")
	}

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(*MainModel)
	if m.overlay != overlayNone {
		t.Fatalf("expected overlay closed")
	}
	if m.app.Dispatcher.Pending() != "" {
		t.Fatalf("esc must abandon the pending message")
	}
}

func TestNewSessionKeyCreatesAndSelects(t *testing.T) {
	m := newTestModel(t)
	m.closeOverlay()
	m.ready = true
	m.width, m.height = 100, 30

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = model.(*MainModel)
	if m.app.Sessions.Len() != 1 {
		t.Fatalf("expected one session, got %d", m.app.Sessions.Len())
	}
	if m.app.Sessions.CurrentID() == "" {
		t.Fatalf("expected new session selected")
	}
}

func TestSidebarSearchFiltersSessions(t *testing.T) {
	m := newTestModel(t)
	m.closeOverlay()
	m.ready = true
	m.width, m.height = 100, 30

	otters, _ := m.app.Sessions.Create()
	if _, err := m.app.Sessions.Append(otters, app.NewMessage(app.RoleUser, "tell me about otters")); err != nil {
		t.Fatalf("append: %v", err)
	}
	weather, _ := m.app.Sessions.Create()
	if _, err := m.app.Sessions.Append(weather, app.NewMessage(app.RoleUser, "weather tomorrow")); err != nil {
		t.Fatalf("append: %v", err)
	}

	m.focus = focusSidebar
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = model.(*MainModel)
	if !m.searching {
		t.Fatalf("expected search mode after /")
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("otters")})
	m = model.(*MainModel)
	list := m.visibleSessions()
	if len(list) != 1 || list[0].ID != otters {
		t.Fatalf("expected only the matching session, got %v", list)
	}

	// Enter keeps the filter and returns j/k navigation to the list.
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(*MainModel)
	if m.searching {
		t.Fatalf("expected search input unfocused after enter")
	}
	if len(m.visibleSessions()) != 1 {
		t.Fatalf("expected filter kept after enter")
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(*MainModel)
	if m.search.Value() != "" || len(m.visibleSessions()) != 2 {
		t.Fatalf("expected esc to clear the filter")
	}
}

func TestKeyEntryDeleteClearsKeyAndSessions(t *testing.T) {
	m := newTestModel(t)

	if err := m.app.Creds.Save("test-key"); err != nil {
		t.Fatalf("save key: %v", err)
	}
	id, _ := m.app.Sessions.Create()
	if _, err := m.app.Sessions.Append(id, app.NewMessage(app.RoleUser, "hello")); err != nil {
		t.Fatalf("append: %v", err)
	}

	if m.overlay != overlayKeyEntry {
		t.Fatalf("expected key entry overlay open")
	}
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = model.(*MainModel)

	if _, ok := m.app.Creds.Current(); ok {
		t.Fatalf("expected stored key removed")
	}
	if m.app.Sessions.Len() != 0 {
		t.Fatalf("expected stored conversations wiped with the key")
	}
	if m.overlay != overlayKeyEntry {
		t.Fatalf("expected prompt to stay open for a new key")
	}
	if m.status == "" {
		t.Fatalf("expected a user-visible notice after deletion")
	}

	// Without a stored key the shortcut does nothing.
	before := m.status
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = model.(*MainModel)
	if m.status != before {
		t.Fatalf("expected no-op when no key is stored")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer string", 8, "a longe…"},
		{"대화 스레드 제목", 5, "대화 스…"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
