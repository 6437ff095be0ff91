package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gemchat/internal/app"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayKeyEntry
	overlayConfirmDelete
)

type spinMsg struct{}

type dispatchDoneMsg struct{ err error }

type keySavedMsg struct{ err error }

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const sidebarWidth = 28

// MainModel is the whole presentation layer. All conversation state lives in
// the core; the model only reads snapshots through the Application surface
// and feeds user intent back in.
type MainModel struct {
	app   *app.Application
	theme Theme

	width  int
	height int
	ready  bool

	focus   focusArea
	overlay overlayKind

	input    textarea.Model
	chatVP   viewport.Model
	keyInput textinput.Model
	search   textinput.Model

	searching    bool
	sessionSel   int
	deleteTarget string

	saving     bool
	spinnerPos int
	status     string
}

func New(application *app.Application) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message and press Enter."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	ki := textinput.New()
	ki.Placeholder = "Paste your Gemini API key"
	ki.EchoMode = textinput.EchoPassword
	ki.CharLimit = 256

	si := textinput.New()
	si.Placeholder = "Search conversations"
	si.Prompt = "/ "
	si.CharLimit = 128

	m := &MainModel{
		app:      application,
		theme:    NewTheme(),
		input:    ta,
		chatVP:   viewport.New(0, 0),
		keyInput: ki,
		search:   si,
	}
	if _, ok := application.Creds.Current(); !ok {
		m.openKeyEntry()
	}
	return m
}

func (m *MainModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *MainModel) openKeyEntry() {
	m.overlay = overlayKeyEntry
	m.keyInput.SetValue("")
	m.keyInput.Focus()
	m.input.Blur()
}

func (m *MainModel) closeOverlay() {
	m.overlay = overlayNone
	m.keyInput.Blur()
	m.deleteTarget = ""
	if m.focus == focusInput {
		m.input.Focus()
	}
}

func (m *MainModel) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return dispatchDoneMsg{err: m.app.Dispatcher.Submit(context.Background(), text)}
	}
}

func (m *MainModel) saveKeyCmd(key string) tea.Cmd {
	// Saving triggers the pending-message replay synchronously inside the
	// core, so it must run off the event loop.
	return func() tea.Msg {
		return keySavedMsg{err: m.app.Creds.Save(key)}
	}
}

func spinTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refreshChat()
		return m, nil

	case spinMsg:
		if m.app.Dispatcher.Loading() || m.saving {
			m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
			return m, spinTick()
		}
		return m, nil

	case dispatchDoneMsg:
		m.refreshChat()
		if msg.err == app.ErrBusy {
			m.status = "Still waiting for the previous reply."
		}
		if m.app.Dispatcher.CredentialRequired() {
			m.openKeyEntry()
		}
		return m, nil

	case keySavedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = "The key cannot be empty."
			return m, nil
		}
		m.status = ""
		if !m.app.Dispatcher.CredentialRequired() {
			m.closeOverlay()
		}
		m.refreshChat()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateChildren(msg)
}

func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayKeyEntry:
		return m.handleKeyEntry(msg)
	case overlayConfirmDelete:
		return m.handleConfirmDelete(msg)
	}

	switch msg.Type {
	case tea.KeyTab:
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil
	case tea.KeyCtrlN:
		if _, err := m.app.Sessions.Create(); err != nil {
			m.status = "Could not create a session."
		}
		m.sessionSel = 0
		m.refreshChat()
		return m, nil
	case tea.KeyCtrlK:
		m.openKeyEntry()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.app.Dispatcher.Loading() {
			m.status = "Still waiting for the previous reply."
			return m, nil
		}
		m.input.SetValue("")
		m.status = ""
		return m, tea.Batch(m.submitCmd(text), spinTick())
	}

	return m, m.updateChildren(msg)
}

func (m *MainModel) handleKeyEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Abandons any parked message; it is not retried later.
		m.app.Dispatcher.DismissCredentialPrompt()
		m.closeOverlay()
		return m, nil
	case tea.KeyEnter:
		key := strings.TrimSpace(m.keyInput.Value())
		if key == "" {
			m.status = "The key cannot be empty."
			return m, nil
		}
		m.saving = true
		return m, tea.Batch(m.saveKeyCmd(key), spinTick())
	case tea.KeyCtrlD:
		if _, ok := m.app.Creds.Current(); !ok {
			return m, nil
		}
		// The stored conversations share the key's trust scope, so
		// deleting the key wipes them too.
		if err := m.app.Creds.Clear(); err != nil {
			m.status = "Could not delete the key."
			return m, nil
		}
		if err := m.app.Sessions.Reset(); err != nil {
			m.status = "Could not clear the stored conversations."
		} else {
			m.status = "API key deleted. Enter a new one to continue."
		}
		m.sessionSel = 0
		m.openKeyEntry()
		m.refreshChat()
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *MainModel) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if err := m.app.Sessions.Delete(m.deleteTarget); err != nil {
			m.status = "Could not delete the session."
		}
		m.closeOverlay()
		if n := len(m.visibleSessions()); m.sessionSel >= n && m.sessionSel > 0 {
			m.sessionSel--
		}
		m.refreshChat()
		return m, nil
	case "n", "esc":
		m.closeOverlay()
		return m, nil
	}
	return m, nil
}

// visibleSessions is the sidebar listing with the search filter applied.
func (m *MainModel) visibleSessions() []app.SessionSummary {
	return m.app.Sessions.Search(m.search.Value())
}

func (m *MainModel) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	list := m.visibleSessions()
	switch msg.String() {
	case "/":
		m.searching = true
		m.search.Focus()
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.sessionSel = 0
		return m, nil
	case "up", "k":
		if m.sessionSel > 0 {
			m.sessionSel--
		}
	case "down", "j":
		if m.sessionSel < len(list)-1 {
			m.sessionSel++
		}
	case "enter":
		if m.sessionSel < len(list) {
			if err := m.app.Sessions.Select(list[m.sessionSel].ID); err != nil {
				m.status = "That conversation no longer exists."
			}
			m.refreshChat()
			m.focus = focusInput
			m.input.Focus()
		}
	case "d", "delete", "backspace":
		if m.sessionSel < len(list) {
			m.deleteTarget = list[m.sessionSel].ID
			m.overlay = overlayConfirmDelete
		}
	}
	return m, nil
}

func (m *MainModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.sessionSel = 0
		return m, nil
	case tea.KeyEnter:
		// Keep the filter; j/k/enter now move through the filtered list.
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.sessionSel = 0
	return m, cmd
}

func (m *MainModel) updateChildren(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *MainModel) resize() {
	chatWidth := m.width - sidebarWidth - 6
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := m.height - 8
	if chatHeight < 3 {
		chatHeight = 3
	}
	m.chatVP.Width = chatWidth
	m.chatVP.Height = chatHeight
	m.input.SetWidth(chatWidth)
	m.keyInput.Width = 48
	m.search.Width = sidebarWidth - 8
}

func (m *MainModel) refreshChat() {
	current, ok := m.app.Sessions.Current()
	if !ok {
		m.chatVP.SetContent(m.theme.TopBarMeta.Render("Start a conversation with Ctrl+N, or just type."))
		return
	}
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(m.chatVP.Width)
	for i, msg := range current.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		label := m.theme.RoleAI.Render("Gemini")
		if msg.Role == app.RoleUser {
			label = m.theme.RoleYou.Render("You")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(wrap.Render(msg.Text))
		b.WriteString("\n")
	}
	m.chatVP.SetContent(b.String())
	m.chatVP.GotoBottom()
}

func (m *MainModel) View() string {
	if !m.ready {
		return "loading…"
	}

	top := m.renderTopBar()
	sidebar := m.renderSidebar()
	chat := m.renderChat()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat)
	footer := m.renderFooter()

	screen := lipgloss.JoinVertical(lipgloss.Left, top, body, footer)

	switch m.overlay {
	case overlayKeyEntry:
		return m.renderOverlay(screen, m.renderKeyEntry())
	case overlayConfirmDelete:
		return m.renderOverlay(screen, m.renderConfirmDelete())
	}
	return screen
}

func (m *MainModel) renderTopBar() string {
	title := m.theme.TopBarTitle.Render("gemchat")
	meta := ""
	if m.app.Dispatcher.Loading() || m.saving {
		meta = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos] + " thinking")
	} else if m.status != "" {
		meta = m.theme.ErrorText.Render(m.status)
	} else if err := m.app.Dispatcher.LastError(); err != "" {
		meta = m.theme.ErrorText.Render(err)
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(meta) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.TopBar.Render(title + strings.Repeat(" ", gap) + meta)
}

func (m *MainModel) renderSidebar() string {
	list := m.visibleSessions()
	currentID := m.app.Sessions.CurrentID()

	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Conversations"))
	b.WriteString("\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if len(list) == 0 {
		if m.search.Value() != "" {
			b.WriteString(m.theme.SidebarItem.Render("(no matches)"))
		} else {
			b.WriteString(m.theme.SidebarItem.Render("(none yet)"))
		}
	}
	for i, s := range list {
		b.WriteString("\n")
		line := truncate(s.Title, sidebarWidth-6)
		style := m.theme.SidebarItem
		prefix := "  "
		if s.ID == currentID {
			style = m.theme.SidebarCurrent
			prefix = "· "
		}
		if m.focus == focusSidebar && i == m.sessionSel {
			style = m.theme.SidebarSel
			prefix = "> "
		}
		b.WriteString(style.Render(prefix + line))
	}

	pane := m.theme.Pane
	if m.focus == focusSidebar {
		pane = m.theme.PaneFocused
	}
	return pane.Width(sidebarWidth).Height(m.height - 6).Render(b.String())
}

func (m *MainModel) renderChat() string {
	pane := m.theme.Pane
	inputBox := m.theme.InputBox
	if m.focus == focusInput {
		pane = m.theme.PaneFocused
		inputBox = m.theme.InputBoxF
	}
	chat := pane.Render(m.chatVP.View())
	input := inputBox.Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, chat, input)
}

func (m *MainModel) renderFooter() string {
	return m.theme.Footer.Render("enter send · tab sessions · / search · ctrl+n new · ctrl+k api key · ctrl+c quit")
}

func (m *MainModel) renderKeyEntry() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Gemini API key"))
	b.WriteString("\n\n")
	if err := m.app.Dispatcher.LastError(); err != "" {
		b.WriteString(m.theme.ErrorText.Render(err))
		b.WriteString("\n\n")
	}
	b.WriteString(m.keyInput.View())
	b.WriteString("\n\n")
	hint := "enter save · esc cancel"
	if _, ok := m.app.Creds.Current(); ok {
		hint = "enter save · ctrl+d delete stored key · esc cancel"
	}
	b.WriteString(m.theme.TopBarMeta.Render(hint))
	if pending := m.app.Dispatcher.Pending(); pending != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.TopBarMeta.Render(fmt.Sprintf("Will resend: %s", truncate(pending, 40))))
	}
	return m.theme.Overlay.Render(b.String())
}

func (m *MainModel) renderConfirmDelete() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Delete conversation"))
	b.WriteString("\n\n")
	b.WriteString("Really delete this conversation? This cannot be undone.")
	b.WriteString("\n\n")
	b.WriteString(m.theme.TopBarMeta.Render("y delete · n keep"))
	return m.theme.Overlay.Render(b.String())
}

func (m *MainModel) renderOverlay(_, box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
