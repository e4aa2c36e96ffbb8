package components

import (
	"fmt"
	"strings"

	"twinpane/internal/conflict"
	"twinpane/internal/tui/styles"
	"twinpane/pkg/types"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// Confirm is a yes/no question shown before destructive work
type Confirm struct {
	Title string
	Body  []string
}

func (c *Confirm) View(theme styles.Theme) string {
	var s strings.Builder
	s.WriteString(theme.Title.Render(c.Title))
	s.WriteString("\n\n")
	for _, line := range c.Body {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(theme.Help.Render("[y] yes  [n/Esc] no"))
	return theme.Dialog.Render(s.String())
}

// PromptKind says what the entered text is for
type PromptKind int

const (
	PromptMakeDir PromptKind = iota
	PromptRename
	PromptSelect
	PromptJump
	PromptConflictName
)

// Prompt reads one line of text
type Prompt struct {
	Kind  PromptKind
	Label string
	input textinput.Model
}

func NewPrompt(kind PromptKind, label, value string) *Prompt {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 255
	in.Width = 40
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &Prompt{Kind: kind, Label: label, input: in}
}

func (p *Prompt) Value() string {
	return p.input.Value()
}

func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *Prompt) View(theme styles.Theme) string {
	return theme.Dialog.Render(theme.Title.Render(p.Label) + "\n\n" + p.input.View() +
		"\n\n" + theme.Help.Render("[Enter] ok  [Esc] cancel"))
}

// ConflictDialog asks what to do with one collision
type ConflictDialog struct {
	Pending    *conflict.Pending
	ApplyToAll bool
}

func (d *ConflictDialog) View(theme styles.Theme) string {
	c := d.Pending.Conflict
	var s strings.Builder
	s.WriteString(theme.Warning.Render("Destination already exists"))
	s.WriteString("\n\n")
	s.WriteString(describe("source:  ", c.Source))
	s.WriteString(describe("existing:", c.Existing))
	s.WriteString("\n")

	check := "[ ]"
	if d.ApplyToAll {
		check = "[x]"
	}
	s.WriteString(fmt.Sprintf("%s apply to all remaining conflicts (Space)\n\n", check))
	s.WriteString(theme.Help.Render(fmt.Sprintf("[o] overwrite  [s] skip  [r] rename to %q  [e] edit name  [a/Esc] abort", c.SuggestedName)))
	return theme.Dialog.Render(s.String())
}

func describe(label string, e types.FileEntry) string {
	size := humanize.Bytes(uint64(e.Size))
	if e.IsDir() {
		size = "directory"
	}
	return fmt.Sprintf("%s %s\n          %s, modified %s\n", label, e.Path, size, humanize.Time(e.ModifiedAt))
}
