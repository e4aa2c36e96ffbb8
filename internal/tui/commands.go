package tui

import (
	"fmt"
	"os/exec"
	"strings"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
	"twinpane/internal/fsys"
	"twinpane/internal/operation"
	"twinpane/internal/scheduler"
	"twinpane/internal/tui/messages"
	"twinpane/internal/watch"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// The wait commands each deliver one value from a background channel.
// Update re-issues them after handling the message.

func waitForProgress(ch <-chan operation.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return messages.ProgressMsg{Progress: p}
	}
}

func waitForCompletion(ch <-chan scheduler.Completion) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return messages.CompletionMsg{Completion: c}
	}
}

func waitForConflict(ch <-chan *conflict.Pending) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return messages.ConflictMsg{Pending: p}
	}
}

func waitForChange(ch <-chan watch.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return messages.DirectoryChangeMsg{Change: c}
	}
}

func loadDrives() tea.Msg {
	mounts, err := fsys.Mounts()
	return messages.DrivesMsg{Mounts: mounts, Error: err}
}

func yankPath(path string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(path); err != nil {
			return messages.ErrorMsg{Err: errors.Wrap(err, "clipboard unavailable")}
		}
		return messages.StatusMsg{Text: "copied " + path, Level: messages.Success}
	}
}

// openExternal suspends the UI and runs program on the entry under the
// cursor. program may carry arguments, as in "less -R".
func (m *Model) openExternal(program string) tea.Cmd {
	cur, ok := m.panels[m.active].Current()
	if !ok || cur.IsDirLike() {
		return nil
	}
	fields := strings.Fields(program)
	if len(fields) == 0 {
		return nil
	}
	c := exec.Command(fields[0], append(fields[1:], cur.Path)...)
	c.Dir = m.panels[m.active].Path()
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return messages.ExternalDoneMsg{Program: fields[0], Err: err}
	})
}

// submit queues op on behalf of the active panel
func (m *Model) submit(op operation.Operation) tea.Cmd {
	id := m.sched.Submit(m.active, op)
	m.jobs[id] = op.Describe()
	return m.busy(op.Describe())
}

func (m *Model) submitUndo() tea.Cmd {
	if m.sched.Stack().Len() == 0 && len(m.jobs) == 0 {
		m.setError(errors.ErrNothingToUndo)
		return nil
	}
	id := m.sched.SubmitUndo(m.active)
	m.jobs[id] = "undo"
	return m.busy("undo")
}

func (m *Model) busy(text string) tea.Cmd {
	if n := len(m.jobs); n > 1 {
		text = fmt.Sprintf("%s (%d queued)", text, n-1)
	}
	m.status.SetText(text)
	return m.status.SetLoading(true)
}
