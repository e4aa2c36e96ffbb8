package components

import (
	"fmt"

	"twinpane/internal/operation"
	"twinpane/internal/tui/styles"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// ProgressBar shows the latest progress frame of the running operation
type ProgressBar struct {
	bar    progress.Model
	last   operation.Progress
	active bool
}

func NewProgressBar() *ProgressBar {
	return &ProgressBar{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Set records a frame and shows the bar
func (p *ProgressBar) Set(frame operation.Progress) {
	p.last = frame
	p.active = true
}

// Done hides the bar
func (p *ProgressBar) Done() {
	p.active = false
	p.last = operation.Progress{}
}

func (p *ProgressBar) Active() bool {
	return p.active
}

func (p *ProgressBar) Last() operation.Progress {
	return p.last
}

func (p *ProgressBar) View(width int, theme styles.Theme) string {
	if !p.active {
		return ""
	}
	f := p.last

	counts := fmt.Sprintf(" %s %d/%d", f.Kind, f.EntriesDone, f.TotalEntries)
	if f.TotalBytes > 0 {
		counts += fmt.Sprintf("  %s/%s", humanize.Bytes(uint64(f.BytesDone)), humanize.Bytes(uint64(f.TotalBytes)))
	}

	barWidth := width / 3
	if barWidth < 10 {
		barWidth = 10
	}
	p.bar.Width = barWidth

	line := p.bar.ViewAs(f.Fraction()) + theme.Title.Render(counts)
	if f.CurrentPath != "" {
		room := width - barWidth - runewidth.StringWidth(counts) - 2
		if room > 5 {
			line += "  " + theme.Help.Render(runewidth.Truncate(f.CurrentPath, room, "…"))
		}
	}
	return line
}
