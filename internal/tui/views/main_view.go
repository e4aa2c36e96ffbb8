package views

import (
	"strings"

	"twinpane/internal/tui/common"
	"twinpane/pkg/types"

	"github.com/charmbracelet/lipgloss"
)

// Lines below the panels: progress, status and key help
const chromeHeight = 3

const (
	minWidth  = 40
	minHeight = 8
)

// RenderMainView draws both panels side by side with the status lines
// underneath. An open dialog replaces the panels.
func RenderMainView(m common.ModelReader) string {
	width, height := m.Size()
	theme := m.Theme()
	if width == 0 || height == 0 {
		return "loading..."
	}
	if width < minWidth || height < minHeight {
		return theme.Warning.Render("terminal too small")
	}

	panelHeight := height - chromeHeight - strings.Count(m.HelpView(), "\n")
	body := ""
	if d := m.Dialog(); d != nil {
		body = lipgloss.Place(width, panelHeight, lipgloss.Center, lipgloss.Center, d.View(theme))
	} else {
		left := width / 2
		right := width - left
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			renderPanel(m, types.LeftPanel, left, panelHeight),
			renderPanel(m, types.RightPanel, right, panelHeight),
		)
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.ProgressBar().View(width, theme))
	sb.WriteString("\n")
	sb.WriteString(m.StatusBar().View(theme))
	sb.WriteString("\n")
	sb.WriteString(m.HelpView())

	return theme.App.Render(sb.String())
}

func renderPanel(m common.ModelReader, id types.PanelID, width, height int) string {
	return m.FileList(id).View(m.Panel(id), width, height, m.Active() == id, m.Theme())
}
