package common

import (
	"twinpane/internal/panel"
	"twinpane/internal/tui/components"
	"twinpane/internal/tui/styles"
	"twinpane/pkg/types"
)

// Dialog is anything drawn on top of the panels
type Dialog interface {
	View(theme styles.Theme) string
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Mode() types.Mode
	Active() types.PanelID
	Panel(id types.PanelID) *panel.State
	FileList(id types.PanelID) *components.FileList
	Size() (width, height int)
	Theme() styles.Theme
	StatusBar() *components.StatusBar
	ProgressBar() *components.ProgressBar
	Dialog() Dialog
	HelpView() string
}
