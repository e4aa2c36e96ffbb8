package tui

import (
	"context"
	"fmt"

	"twinpane/internal/config"
	"twinpane/internal/conflict"
	"twinpane/internal/log"
	"twinpane/internal/operation"
	"twinpane/internal/panel"
	"twinpane/internal/scheduler"
	"twinpane/internal/tui/common"
	"twinpane/internal/tui/components"
	"twinpane/internal/tui/messages"
	"twinpane/internal/tui/styles"
	"twinpane/internal/tui/views"
	"twinpane/internal/undo"
	"twinpane/internal/watch"
	"twinpane/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Options configures a Model
type Options struct {
	Config *config.Config
	// ConfigPath is where panel paths are saved on quit; empty disables it
	ConfigPath string
	// Left and Right override the configured starting directories
	Left, Right string
}

type Model struct {
	cfg        *config.Config
	configPath string
	keys       types.KeyMap
	theme      styles.Theme

	// Panels
	panels [2]*panel.State
	lists  [2]*components.FileList
	active types.PanelID

	// Input state
	mode     types.Mode
	showHelp bool
	prompt   *components.Prompt
	confirm  *components.Confirm
	onYes    func() tea.Cmd
	conflict *components.ConflictDialog
	deferred []*conflict.Pending
	drives   *components.DriveList

	// Background work
	sched   *scheduler.Scheduler
	asker   *conflict.ChannelAsker
	watcher *watch.Watcher
	stop    context.CancelFunc
	jobs    map[uuid.UUID]string

	// Chrome
	status   *components.StatusBar
	progress *components.ProgressBar
	help     help.Model
	width    int
	height   int
}

// New builds the model, its operation pipeline and, when enabled, the
// directory watcher. Call Close when the program exits.
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	left, right := cfg.Panels.Left, cfg.Panels.Right
	if opts.Left != "" {
		left = opts.Left
	}
	if opts.Right != "" {
		right = opts.Right
	}

	m := &Model{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		keys:       types.DefaultKeyMap(),
		theme:      styles.NewTheme(cfg),
		mode:       types.Normal,
		asker:      conflict.NewChannelAsker(1),
		jobs:       make(map[uuid.UUID]string),
		status:     components.NewStatusBar(),
		progress:   components.NewProgressBar(),
		help:       help.New(),
	}

	for id, dir := range map[types.PanelID]string{types.LeftPanel: left, types.RightPanel: right} {
		p, err := panel.New(id, dir,
			panel.WithSort(cfg.SortKey(), cfg.Panels.SortDescending),
			panel.WithShowHidden(cfg.Panels.ShowHidden))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s panel: %w", id, err)
		}
		m.panels[id] = p
		m.lists[id] = components.NewFileList()
	}

	exec, err := operation.CurrentExecutorFactory(cfg, m.asker)
	if err != nil {
		return nil, err
	}
	m.sched = scheduler.New(exec, undo.New(exec, cfg.Operations.UndoLimit))
	ctx, stop := context.WithCancel(context.Background())
	m.stop = stop
	if err := m.sched.Start(ctx); err != nil {
		stop()
		return nil, err
	}

	if cfg.Watch.Enabled {
		w, err := watch.New()
		if err != nil {
			log.LogWithError(err).Warn("directory watching disabled")
		} else {
			m.watcher = w
			for id, p := range m.panels {
				if err := w.Watch(types.PanelID(id), p.Path()); err != nil {
					log.LogWithError(err).Warn("cannot watch panel directory")
				}
			}
			if err := w.Start(); err != nil {
				log.LogWithError(err).Warn("directory watching disabled")
				m.watcher = nil
			}
		}
	}

	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForProgress(m.sched.Progress()),
		waitForCompletion(m.sched.Results()),
		waitForConflict(m.asker.Pending()),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher.Changes()))
	}
	return tea.Batch(cmds...)
}

// Close stops the background worker and the watcher, then releases
// whatever the undo history holds.
func (m *Model) Close() {
	m.sched.Stop()
	m.stop()
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.sched.Stack().Clear()
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case messages.ProgressMsg:
		m.progress.Set(msg.Progress)
		return m, waitForProgress(m.sched.Progress())

	case messages.CompletionMsg:
		return m, tea.Batch(m.handleCompletion(msg.Completion), waitForCompletion(m.sched.Results()))

	case messages.ConflictMsg:
		if m.mode != types.Normal {
			// the open dialog keeps the screen; the question follows it
			m.deferred = append(m.deferred, msg.Pending)
			m.status.Set("a collision is waiting for an answer", messages.Warning)
		} else {
			m.showConflict(msg.Pending)
		}
		return m, waitForConflict(m.asker.Pending())

	case messages.DirectoryChangeMsg:
		for _, id := range msg.Change.Panels {
			m.refresh(id)
		}
		if m.watcher == nil {
			return m, nil
		}
		return m, waitForChange(m.watcher.Changes())

	case messages.DrivesMsg:
		if msg.Error != nil {
			m.setError(msg.Error)
			return m, nil
		}
		if m.mode != types.Normal {
			return m, nil
		}
		m.drives = components.NewDriveList(msg.Mounts)
		m.mode = types.Drives
		return m, nil

	case messages.ExternalDoneMsg:
		if msg.Err != nil {
			m.setError(fmt.Errorf("%s: %w", msg.Program, msg.Err))
		}
		m.refreshAll()
		return m, nil

	case messages.StatusMsg:
		m.status.Set(msg.Text, msg.Level)
		return m, nil

	case messages.ErrorMsg:
		m.setError(msg.Err)
		return m, nil

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

// handleCompletion reports a finished job and refreshes both panels,
// since either may show a tree the job touched.
func (m *Model) handleCompletion(c scheduler.Completion) tea.Cmd {
	delete(m.jobs, c.ID)
	m.refreshAll()

	if _, busy := m.sched.Current(); !busy && m.sched.Queued() == 0 {
		m.progress.Done()
		m.status.SetLoading(false)
	}

	if c.Undo {
		switch {
		case c.Err != nil:
			m.setError(fmt.Errorf("undo failed: %w", c.Err))
		case c.Undone != nil:
			m.status.Set("undone: "+c.Undone.Describe(), messages.Success)
		}
		return nil
	}

	r := c.Result
	level := messages.Success
	switch {
	case r.Fatal != nil || len(r.Failed) > 0:
		level = messages.Failure
	case r.Cancelled:
		level = messages.Warning
	}
	text := r.Summary()
	switch n := len(r.Failed); {
	case n == 1:
		text += ": " + r.Failed[0].Err.Error()
	case n > 1:
		text += fmt.Sprintf(": %s (+%d more, see log)", r.Failed[0].Err.Error(), n-1)
	}
	m.status.Set(text, level)
	return nil
}

func (m *Model) setError(err error) {
	log.LogWithError(err).Debug("shown in status bar")
	m.status.Set(err.Error(), messages.Failure)
}

// refresh re-reads a panel and follows it in the watcher when the
// directory it shows was removed
func (m *Model) refresh(id types.PanelID) {
	p := m.panels[id]
	before := p.Path()
	if err := p.Refresh(); err != nil {
		m.setError(err)
		return
	}
	if p.Path() != before {
		m.watch(id)
	}
}

func (m *Model) refreshAll() {
	m.refresh(types.LeftPanel)
	m.refresh(types.RightPanel)
}

func (m *Model) watch(id types.PanelID) {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Watch(id, m.panels[id].Path()); err != nil {
		log.LogWithError(err).Warn("cannot watch panel directory")
	}
}

// Getters

func (m *Model) Mode() types.Mode { return m.mode }

func (m *Model) Active() types.PanelID { return m.active }

func (m *Model) Panel(id types.PanelID) *panel.State { return m.panels[id] }

func (m *Model) FileList(id types.PanelID) *components.FileList { return m.lists[id] }

func (m *Model) Size() (int, int) { return m.width, m.height }

func (m *Model) Theme() styles.Theme { return m.theme }

func (m *Model) StatusBar() *components.StatusBar { return m.status }

func (m *Model) ProgressBar() *components.ProgressBar { return m.progress }

func (m *Model) ShowHelp() bool { return m.showHelp }

// Scheduler exposes the operation pipeline
func (m *Model) Scheduler() *scheduler.Scheduler { return m.sched }

// Dialog returns whatever is drawn over the panels, or nil
func (m *Model) Dialog() common.Dialog {
	switch {
	case m.mode == types.Prompt && m.prompt != nil:
		return m.prompt
	case m.mode == types.Confirm && m.confirm != nil:
		return m.confirm
	case m.mode == types.Conflict && m.conflict != nil:
		return m.conflict
	case m.mode == types.Drives && m.drives != nil:
		return m.drives
	}
	return nil
}

// HelpView renders the key help, in full when toggled on
func (m *Model) HelpView() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

var _ common.ModelReader = (*Model)(nil)
