package components

import (
	"fmt"
	"strings"

	"twinpane/internal/fsys"
	"twinpane/internal/tui/styles"
)

// DriveList lets the user jump a panel to a mount point
type DriveList struct {
	mounts []fsys.Mount
	cursor int
}

func NewDriveList(mounts []fsys.Mount) *DriveList {
	return &DriveList{mounts: mounts}
}

func (d *DriveList) MoveCursor(delta int) {
	n := d.cursor + delta
	if n >= 0 && n < len(d.mounts) {
		d.cursor = n
	}
}

// Current returns the mount under the cursor
func (d *DriveList) Current() (fsys.Mount, bool) {
	if d.cursor < 0 || d.cursor >= len(d.mounts) {
		return fsys.Mount{}, false
	}
	return d.mounts[d.cursor], true
}

func (d *DriveList) Len() int {
	return len(d.mounts)
}

func (d *DriveList) View(theme styles.Theme) string {
	var s strings.Builder
	s.WriteString(theme.Title.Render("Drives"))
	s.WriteString("\n\n")
	if len(d.mounts) == 0 {
		s.WriteString("No drives found\n")
	}
	for i, m := range d.mounts {
		cursor := " "
		style := theme.Unselected
		if i == d.cursor {
			cursor = ">"
			style = theme.Selected
		}
		line := m.Path
		if m.Device != "" {
			line = fmt.Sprintf("%-24s %s (%s)", m.Path, m.Device, m.FSType)
		}
		s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(line)))
	}
	s.WriteString("\n")
	s.WriteString(theme.Help.Render("[Enter] open  [Esc] close"))
	return theme.Dialog.Render(s.String())
}
