package styles

import (
	"twinpane/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds every style the views render with. It is built from the
// configured palette and rebuilt when the palette changes.
type Theme struct {
	App            lipgloss.Style
	Title          lipgloss.Style
	ActivePanel    lipgloss.Style
	InactivePanel  lipgloss.Style
	ActiveHeader   lipgloss.Style
	InactiveHeader lipgloss.Style
	Cursor         lipgloss.Style
	Selected       lipgloss.Style
	Unselected     lipgloss.Style
	Directory      lipgloss.Style
	Symlink        lipgloss.Style
	Hidden         lipgloss.Style
	Help           lipgloss.Style
	Success        lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Dialog         lipgloss.Style
}

// NewTheme builds a Theme from the config palette
func NewTheme(cfg *config.Config) Theme {
	c := cfg.Theme
	primary := lipgloss.Color(c.Primary)
	border := lipgloss.Color(c.Border)

	return Theme{
		App: lipgloss.NewStyle(),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		ActivePanel:   PanelStyle.BorderForeground(primary),
		InactivePanel: PanelStyle.BorderForeground(border),
		ActiveHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		InactiveHeader: lipgloss.NewStyle().
			Foreground(border),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(c.Cursor)).
			Foreground(lipgloss.Color("255")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Selected)).
			Bold(true),
		Unselected: lipgloss.NewStyle(),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Directory)).
			Bold(true),
		Symlink: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Directory)).
			Italic(true),
		Hidden: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Hidden)),
		Help: lipgloss.NewStyle().
			Foreground(border),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Warning)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Error)).
			Bold(true),
		Dialog: DialogStyle.BorderForeground(primary),
	}
}

// Default is the theme of the stock palette
var Default = NewTheme(config.New())
