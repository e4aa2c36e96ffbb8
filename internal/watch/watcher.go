package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"twinpane/internal/log"
	"twinpane/pkg/types"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events in
// one directory to settle before reporting it
const DefaultDebounce = 150 * time.Millisecond

// Change reports that a directory shown by one or both panels changed
type Change struct {
	Dir       string
	Panels    []types.PanelID
	Timestamp time.Time
}

// Watcher follows the directories the panels are showing using fsnotify
type Watcher struct {
	// Directory each panel is showing
	panels map[types.PanelID]string

	// Channel to deliver directory changes
	changes chan Change

	// Channel to signal stop, and one closed when the loop has exited
	stopChan chan struct{}
	done     chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state and the panels map
	mutex sync.RWMutex

	// Whether the watcher is running
	running bool

	debounce time.Duration
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the settle time for bursts of events
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a new panel watcher using fsnotify
func New(opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		panels:    make(map[types.PanelID]string),
		changes:   make(chan Change, 10),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch points panel at dir, dropping the directory it watched before
// unless the other panel still shows it
func (w *Watcher) Watch(panel types.PanelID, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	old, had := w.panels[panel]
	if had && old == dir {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.panels[panel] = dir
	if had && !w.watchedLocked(old) {
		_ = w.fsWatcher.Remove(old)
	}

	log.LogWithFields(log.F("directory", dir), log.F("panel", panel.String())).Debug("Watching directory")
	return nil
}

// Unwatch stops following panel's directory
func (w *Watcher) Unwatch(panel types.PanelID) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	old, ok := w.panels[panel]
	if !ok {
		return
	}
	delete(w.panels, panel)
	if !w.watchedLocked(old) {
		_ = w.fsWatcher.Remove(old)
	}
}

func (w *Watcher) watchedLocked(dir string) bool {
	for _, d := range w.panels {
		if d == dir {
			return true
		}
	}
	return false
}

// panelsFor returns the panels showing dir
func (w *Watcher) panelsFor(dir string) []types.PanelID {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	var out []types.PanelID
	for p, d := range w.panels {
		if d == dir {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Changes returns the channel that delivers directory changes
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins the watching process using fsnotify
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	stop, done := w.stopChan, w.done
	w.mutex.Unlock()

	go w.loop(stop, done)

	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop(stop, done chan struct{}) {
	defer close(done)
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			dir := w.dirOf(event.Name)
			if dir == "" {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[dir] = struct{}{}

		case <-timer.C:
			for dir := range pending {
				w.emit(dir)
			}
			clear(pending)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

// dirOf maps an event path to the watched directory it belongs to
func (w *Watcher) dirOf(name string) string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	for _, d := range w.panels {
		if name == d || filepath.Dir(name) == d {
			return d
		}
	}
	return ""
}

func (w *Watcher) emit(dir string) {
	panels := w.panelsFor(dir)
	if len(panels) == 0 {
		return
	}
	change := Change{Dir: dir, Panels: panels, Timestamp: time.Now()}

	// Send non-blockingly; a dropped change is covered by the next one
	select {
	case w.changes <- change:
	default:
		log.LogWithFields(log.F("directory", dir)).Warn("Change channel is full, dropped change")
	}
}

// Stop halts the watching process and closes the change channel
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	w.running = false
	stop, done := w.stopChan, w.done
	w.mutex.Unlock()

	// The loop must be gone before the change channel closes
	close(stop)
	<-done

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	close(w.changes)

	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the watched directories in sorted order
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	seen := make(map[string]struct{}, len(w.panels))
	var dirs []string
	for _, d := range w.panels {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
