package components

import (
	"twinpane/internal/tui/messages"
	"twinpane/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type StatusBar struct {
	text    string
	level   messages.Level
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Default.Title

	return &StatusBar{
		spinner: s,
	}
}

// SetLoading toggles the spinner. It returns the command that starts
// ticking when loading begins.
func (s *StatusBar) SetLoading(loading bool) tea.Cmd {
	was := s.loading
	s.loading = loading
	if loading && !was {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
	s.level = messages.Info
}

// Set replaces the text and its severity
func (s *StatusBar) Set(text string, level messages.Level) {
	s.text = text
	s.level = level
}

func (s *StatusBar) Text() string {
	return s.text
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) View(theme styles.Theme) string {
	if s.text == "" && !s.loading {
		return ""
	}

	style := theme.Help
	switch s.level {
	case messages.Success:
		style = theme.Success
	case messages.Warning:
		style = theme.Warning
	case messages.Failure:
		style = theme.Error
	}

	if s.loading {
		return s.spinner.View() + " " + style.Render(s.text)
	}
	return style.Render(s.text)
}
