package tui

import (
	"fmt"
	"path/filepath"

	"twinpane/internal/conflict"
	"twinpane/internal/config"
	"twinpane/internal/log"
	"twinpane/internal/operation"
	"twinpane/internal/tui/components"
	"twinpane/internal/tui/messages"
	"twinpane/internal/tui/styles"
	"twinpane/pkg/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case types.Prompt:
		return m.handlePromptKeys(msg)
	case types.Confirm:
		return m.handleConfirmKeys(msg)
	case types.Conflict:
		return m.handleConflictKeys(msg)
	case types.Drives:
		return m.handleDrivesKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.panels[m.active]
	page := components.Rows(m.height - 3)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePaths()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.Up):
		p.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		p.MoveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		p.MoveCursor(-page)
	case key.Matches(msg, m.keys.PageDown):
		p.MoveCursor(page)
	case key.Matches(msg, m.keys.GotoTop):
		p.SetCursor(0)
	case key.Matches(msg, m.keys.GotoBottom):
		p.SetCursor(len(p.Visible()) - 1)
	case key.Matches(msg, m.keys.Enter):
		if cur, ok := p.Current(); ok && cur.IsDirLike() {
			if err := p.NavigateInto(cur); err != nil {
				m.setError(err)
			} else {
				m.watch(m.active)
			}
		}
	case key.Matches(msg, m.keys.GoBack):
		if err := p.NavigateUp(); err != nil {
			m.setError(err)
		} else {
			m.watch(m.active)
		}
	case key.Matches(msg, m.keys.SwitchPanel):
		m.active = m.active.Other()
	case key.Matches(msg, m.keys.Refresh):
		m.refreshAll()
	case key.Matches(msg, m.keys.Drives):
		return m, loadDrives

	case key.Matches(msg, m.keys.Select):
		p.ToggleCurrent()
	case key.Matches(msg, m.keys.InvertSelected):
		p.InvertSelection()
	case key.Matches(msg, m.keys.ClearSelection):
		p.ClearSelection()
	case key.Matches(msg, m.keys.SelectPattern):
		m.openPrompt(components.PromptSelect, "Select entries matching", "*")
	case key.Matches(msg, m.keys.Jump):
		m.openPrompt(components.PromptJump, "Jump to", "")
	case key.Matches(msg, m.keys.ToggleHidden):
		show := !p.ShowHidden()
		m.cfg.Panels.ShowHidden = show
		for _, each := range m.panels {
			each.SetShowHidden(show)
		}
	case key.Matches(msg, m.keys.CycleSort):
		k, desc := p.SortKey()
		p.SetSort(k.Next(), desc)
		m.status.SetText("sorted by " + k.Next().String())
	case key.Matches(msg, m.keys.ReverseSort):
		k, desc := p.SortKey()
		p.SetSort(k, !desc)

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.YankPath):
		if cur, ok := p.Current(); ok {
			return m, yankPath(cur.Path)
		}
	case key.Matches(msg, m.keys.View):
		return m, m.openExternal(m.cfg.Viewer())
	case key.Matches(msg, m.keys.Edit):
		return m, m.openExternal(m.cfg.Editor())

	case key.Matches(msg, m.keys.Copy):
		return m, m.transfer(operation.KindCopy)
	case key.Matches(msg, m.keys.Move):
		return m, m.transfer(operation.KindMove)
	case key.Matches(msg, m.keys.Delete):
		return m, m.remove()
	case key.Matches(msg, m.keys.MakeDir):
		m.openPrompt(components.PromptMakeDir, "New directory in "+p.Path(), "")
	case key.Matches(msg, m.keys.Rename):
		if cur, ok := p.Current(); ok {
			m.openPrompt(components.PromptRename, "Rename "+cur.Name, cur.Name)
		}
	case key.Matches(msg, m.keys.Undo):
		return m, m.submitUndo()
	case key.Matches(msg, m.keys.Cancel):
		if id, ok := m.sched.Current(); ok && m.sched.Cancel(id) {
			m.status.Set("cancelling...", messages.Warning)
		} else if m.showHelp {
			m.showHelp = false
		}
	}
	return m, nil
}

func (m *Model) openPrompt(kind components.PromptKind, label, value string) {
	m.prompt = components.NewPrompt(kind, label, value)
	m.mode = types.Prompt
}

// closeDialog returns to normal mode, or to the next collision that
// arrived while the dialog was open
func (m *Model) closeDialog() {
	m.prompt, m.confirm, m.onYes = nil, nil, nil
	m.conflict, m.drives = nil, nil
	m.mode = types.Normal
	if len(m.deferred) > 0 {
		next := m.deferred[0]
		m.deferred = m.deferred[1:]
		m.showConflict(next)
	}
}

func (m *Model) showConflict(p *conflict.Pending) {
	m.conflict = &components.ConflictDialog{Pending: p}
	m.mode = types.Conflict
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pr := m.prompt
	switch msg.Type {
	case tea.KeyEsc:
		if pr.Kind == components.PromptConflictName {
			// back to the collision question
			m.prompt = nil
			m.mode = types.Conflict
			return m, nil
		}
		m.closeDialog()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitPrompt(pr)
	}

	cmd := pr.Update(msg)
	if pr.Kind == components.PromptJump {
		m.panels[m.active].Jump(pr.Value())
	}
	return m, cmd
}

func (m *Model) submitPrompt(pr *components.Prompt) tea.Cmd {
	p := m.panels[m.active]
	value := pr.Value()

	if pr.Kind == components.PromptConflictName {
		m.prompt = nil
		return m.resolve(conflict.Decision{Action: conflict.Rename, NewName: value})
	}
	m.closeDialog()

	switch pr.Kind {
	case components.PromptMakeDir:
		return m.submit(operation.MakeDir{Parent: p.Path(), Name: value})
	case components.PromptRename:
		cur, ok := p.Current()
		if !ok || value == cur.Name {
			return nil
		}
		return m.submit(operation.Rename{Source: cur.Path, NewName: value})
	case components.PromptSelect:
		n, err := p.SelectPattern(value)
		if err != nil {
			m.setError(err)
			return nil
		}
		m.status.SetText(fmt.Sprintf("%d selected by %s", n, value))
	case components.PromptJump:
		p.Jump(value)
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := m.onYes
		m.closeDialog()
		if action != nil {
			return m, action()
		}
	case "n", "N", "esc", "q":
		m.closeDialog()
	}
	return m, nil
}

func (m *Model) handleConflictKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.conflict
	switch msg.String() {
	case " ":
		d.ApplyToAll = !d.ApplyToAll
	case "o", "O":
		return m, m.resolve(conflict.Decision{Action: conflict.Overwrite})
	case "s", "S":
		return m, m.resolve(conflict.Decision{Action: conflict.Skip})
	case "r", "R":
		return m, m.resolve(conflict.Decision{Action: conflict.Rename, NewName: d.Pending.Conflict.SuggestedName})
	case "e", "E":
		m.prompt = components.NewPrompt(components.PromptConflictName, "Rename to", d.Pending.Conflict.SuggestedName)
		m.mode = types.Prompt
	case "a", "A", "esc":
		return m, m.resolve(conflict.Decision{Action: conflict.Abort})
	}
	return m, nil
}

// resolve answers the waiting conflict and returns to normal mode
func (m *Model) resolve(d conflict.Decision) tea.Cmd {
	if m.conflict == nil {
		m.closeDialog()
		return nil
	}
	d.ApplyToAll = m.conflict.ApplyToAll
	m.conflict.Pending.Resume(d)
	log.LogWithFields(log.F("action", d.Action.String()), log.F("apply_to_all", d.ApplyToAll)).Debug("conflict answered")
	m.closeDialog()
	return nil
}

func (m *Model) handleDrivesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.drives.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.drives.MoveCursor(1)
	case msg.Type == tea.KeyEnter:
		mount, ok := m.drives.Current()
		m.closeDialog()
		if !ok {
			return m, nil
		}
		if err := m.panels[m.active].ChangeDir(mount.Path); err != nil {
			m.setError(err)
			return m, nil
		}
		m.watch(m.active)
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Drives):
		m.closeDialog()
	}
	return m, nil
}

// transfer copies or moves the active panel's targets into the other panel
func (m *Model) transfer(kind operation.Kind) tea.Cmd {
	p := m.panels[m.active]
	sources := p.Targets()
	if len(sources) == 0 {
		return nil
	}
	dest := m.panels[m.active.Other()].Path()

	var op operation.Operation = operation.Copy{Sources: sources, DestDir: dest}
	if kind == operation.KindMove {
		op = operation.Move{Sources: sources, DestDir: dest}
	}

	if !m.cfg.Operations.ConfirmOperations {
		p.ClearSelection()
		return m.submit(op)
	}
	body := append(describeTargets(sources, p.SelectionSize), "to "+dest)
	m.ask(titleCase.String(kind.String()), body, func() tea.Cmd {
		p.ClearSelection()
		return m.submit(op)
	})
	return nil
}

func (m *Model) remove() tea.Cmd {
	p := m.panels[m.active]
	targets := p.Targets()
	if len(targets) == 0 {
		return nil
	}
	op := operation.Delete{Targets: targets}

	if !m.cfg.Operations.ConfirmDelete {
		p.ClearSelection()
		return m.submit(op)
	}
	note := "This cannot be undone."
	if m.cfg.Operations.RecoverableDelete {
		note = "Deleted entries are kept until you quit and can be restored with undo."
	}
	m.ask("Delete", append(describeTargets(targets, p.SelectionSize), note), func() tea.Cmd {
		p.ClearSelection()
		return m.submit(op)
	})
	return nil
}

// ask opens a yes/no dialog; action runs on yes
func (m *Model) ask(title string, body []string, action func() tea.Cmd) {
	m.confirm = &components.Confirm{Title: title + "?", Body: body}
	m.onYes = action
	m.mode = types.Confirm
}

const listedTargets = 5

func describeTargets(targets []string, size func() (int, int64)) []string {
	var lines []string
	for i, t := range targets {
		if i == listedTargets {
			lines = append(lines, fmt.Sprintf("  ...and %d more", len(targets)-listedTargets))
			break
		}
		lines = append(lines, "  "+filepath.Base(t))
	}
	if n, bytes := size(); n > 0 && bytes > 0 {
		lines = append(lines, fmt.Sprintf("(%d entries, %s before directory contents)", n, humanize.Bytes(uint64(bytes))))
	}
	return lines
}

var titleCase = cases.Title(language.English)

// savePaths remembers where the panels were for the next start
func (m *Model) savePaths() {
	if !m.cfg.Panels.RememberPaths {
		return
	}
	m.cfg.Panels.Left = m.panels[types.LeftPanel].Path()
	m.cfg.Panels.Right = m.panels[types.RightPanel].Path()
	m.saveConfig("failed to save panel paths")
}

// cycleTheme switches to the next predefined palette and keeps it for the
// next start
func (m *Model) cycleTheme() {
	themes := config.ListThemes()
	next := themes[0]
	for i, name := range themes {
		if name == m.cfg.Theme.Name {
			next = themes[(i+1)%len(themes)]
			break
		}
	}
	m.cfg.ApplyTheme(next)
	m.theme = styles.NewTheme(m.cfg)
	m.status.SetText("theme: " + next)
	m.saveConfig("failed to save theme")
}

func (m *Model) saveConfig(what string) {
	if m.configPath == "" {
		return
	}
	if err := config.SaveConfig(m.cfg, m.configPath); err != nil {
		log.LogWithError(err).Warn(what)
	}
}
