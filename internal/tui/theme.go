package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	Accent      lipgloss.AdaptiveColor
	Error       lipgloss.AdaptiveColor
	Border      lipgloss.AdaptiveColor

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style
	ErrorText   lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style

	SidebarItem    lipgloss.Style
	SidebarCurrent lipgloss.Style
	SidebarSel     lipgloss.Style

	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
}

func NewTheme() Theme {
	if os.Getenv("GEMCHAT_NO_COLOR") == "1" {
		return newNoColorTheme()
	}

	t := Theme{
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#e8e6e3"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#8a8782"},
		Accent:      lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#fb923c"},
		Error:       lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"},
		Border:      lipgloss.AdaptiveColor{Light: "#d4d4d4", Dark: "#3f3f3f"},
	}

	t.TopBar = lipgloss.NewStyle().Padding(0, 1)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = t.Pane.BorderForeground(t.Accent)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextMuted)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = t.InputBox.BorderForeground(t.Accent)
	t.Spinner = lipgloss.NewStyle().Foreground(t.Accent)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.Error)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)

	t.SidebarItem = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.SidebarCurrent = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.SidebarSel = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)

	t.Overlay = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(t.Accent).Padding(1, 2)
	t.OverlayTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	return t
}

func newNoColorTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		TopBar:         plain.Padding(0, 1),
		TopBarTitle:    plain.Bold(true),
		TopBarMeta:     plain,
		Pane:           plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		PaneFocused:    plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		PaneTitle:      plain.Bold(true),
		Footer:         plain.Padding(0, 1),
		InputBox:       plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		InputBoxF:      plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		Spinner:        plain,
		ErrorText:      plain.Bold(true),
		RoleYou:        plain.Bold(true),
		RoleAI:         plain.Bold(true),
		SidebarItem:    plain,
		SidebarCurrent: plain,
		SidebarSel:     plain.Bold(true),
		Overlay:        plain.Border(lipgloss.DoubleBorder()).Padding(1, 2),
		OverlayTitle:   plain.Bold(true),
	}
}
