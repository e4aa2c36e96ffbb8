package styles

import "github.com/charmbracelet/lipgloss"

// Layout styles shared by every theme
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder())

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 2)
)

// Frame is the width and height a panel border takes up
const Frame = 2
