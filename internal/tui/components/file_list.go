package components

import (
	"fmt"
	"strings"

	"twinpane/internal/panel"
	"twinpane/internal/tui/styles"
	"twinpane/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	sizeWidth = 9
	dateWidth = 16
	dateFmt   = "2006-01-02 15:04"
)

// FileList renders one panel. It only keeps the scroll offset; everything
// else comes from the panel state it is given.
type FileList struct {
	offset int
}

func NewFileList() *FileList {
	return &FileList{}
}

// Offset returns the first visible row
func (fl *FileList) Offset() int {
	return fl.offset
}

// Rows returns how many entries fit into a panel of the given height
func Rows(height int) int {
	// border, header and footer
	rows := height - styles.Frame - 2
	if rows < 1 {
		return 1
	}
	return rows
}

// scroll keeps the cursor inside the window
func (fl *FileList) scroll(cursor, rows, total int) {
	if cursor < 0 {
		fl.offset = 0
		return
	}
	if cursor < fl.offset {
		fl.offset = cursor
	}
	if cursor >= fl.offset+rows {
		fl.offset = cursor - rows + 1
	}
	if last := total - rows; fl.offset > last {
		fl.offset = last
	}
	if fl.offset < 0 {
		fl.offset = 0
	}
}

func (fl *FileList) View(p *panel.State, width, height int, active bool, theme styles.Theme) string {
	inner := width - styles.Frame
	if inner < 10 {
		inner = 10
	}
	rows := Rows(height)
	entries := p.Visible()
	fl.scroll(p.Cursor(), rows, len(entries))

	var s strings.Builder

	header := theme.InactiveHeader
	if active {
		header = theme.ActiveHeader
	}
	s.WriteString(header.Render(truncateLeft(p.Path(), inner)))
	s.WriteString("\n")

	if len(entries) == 0 {
		s.WriteString(theme.Hidden.Render(pad("(empty)", inner)))
		s.WriteString("\n")
		rows--
	}

	end := fl.offset + rows
	if end > len(entries) {
		end = len(entries)
	}
	for i := fl.offset; i < end; i++ {
		s.WriteString(fl.row(p, entries[i], i == p.Cursor() && active, inner, theme))
		s.WriteString("\n")
	}
	for i := end - fl.offset; i < rows; i++ {
		s.WriteString(strings.Repeat(" ", inner))
		s.WriteString("\n")
	}

	s.WriteString(theme.Help.Render(pad(footer(p), inner)))

	box := theme.InactivePanel
	if active {
		box = theme.ActivePanel
	}
	return box.Width(inner).Render(s.String())
}

func (fl *FileList) row(p *panel.State, e types.FileEntry, cursor bool, width int, theme styles.Theme) string {
	mark := " "
	if p.IsSelected(e.Path) {
		mark = "*"
	}

	size := humanize.Bytes(uint64(e.Size))
	switch {
	case e.IsDir():
		size = "<DIR>"
	case e.IsSymlink() && e.TargetIsDir:
		size = "<LNK>"
	}

	details := fmt.Sprintf(" %*s", sizeWidth, size)
	if width >= 40+dateWidth {
		details += " " + e.ModifiedAt.Format(dateFmt)
	}

	name := e.Name
	if e.IsDirLike() {
		name += "/"
	}
	nameWidth := width - 1 - runewidth.StringWidth(details)
	line := mark + pad(runewidth.Truncate(name, nameWidth, "…"), nameWidth) + details

	style := theme.Unselected
	switch {
	case p.IsSelected(e.Path):
		style = theme.Selected
	case e.IsHidden:
		style = theme.Hidden
	case e.IsSymlink():
		style = theme.Symlink
	case e.IsDir():
		style = theme.Directory
	}
	if cursor {
		style = style.Background(theme.Cursor.GetBackground())
	}
	return style.Render(line)
}

func footer(p *panel.State) string {
	if n, bytes := p.SelectionSize(); n > 0 {
		return fmt.Sprintf("%d selected, %s", n, humanize.Bytes(uint64(bytes)))
	}
	key, desc := p.SortKey()
	dir := "asc"
	if desc {
		dir = "desc"
	}
	hidden := ""
	if p.ShowHidden() {
		hidden = ", hidden shown"
	}
	return fmt.Sprintf("%d entries, by %s %s%s", len(p.Visible()), key, dir, hidden)
}

// pad right-fills s with spaces to width cells
func pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncateLeft keeps the tail of long paths
func truncateLeft(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return pad(s, width)
	}
	r := []rune(s)
	for len(r) > 0 && runewidth.StringWidth(string(r))+1 > width {
		r = r[1:]
	}
	return "…" + string(r)
}
