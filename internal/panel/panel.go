// Package panel holds the state of one directory panel: the current
// snapshot, the sorted and filtered view of it, the cursor and the
// selection. Each panel owns its State; the two never share one.
package panel

import (
	"path/filepath"
	"sort"
	"strings"

	"twinpane/internal/errors"
	"twinpane/internal/fsys"
	"twinpane/internal/log"
	"twinpane/pkg/types"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"
)

// Reader produces a snapshot for a directory
type Reader func(dir string) (*types.DirectorySnapshot, error)

// State is the state of a single panel. It is not safe for concurrent use;
// the UI goroutine owns it.
type State struct {
	id         types.PanelID
	read       Reader
	snapshot   *types.DirectorySnapshot
	sorted     []types.FileEntry // every entry of the snapshot, ordered
	view       []types.FileEntry // sorted minus filtered entries
	cursor     int
	selected   map[string]struct{}
	sortKey    types.SortKey
	descending bool
	showHidden bool
	logger     *log.Logger
}

// Option configures a State
type Option func(*State)

// WithReader replaces the directory reader, mainly for tests
func WithReader(r Reader) Option {
	return func(s *State) { s.read = r }
}

// WithSort sets the initial sort order
func WithSort(key types.SortKey, descending bool) Option {
	return func(s *State) {
		s.sortKey = key
		s.descending = descending
	}
}

// WithShowHidden sets the initial hidden filter
func WithShowHidden(show bool) Option {
	return func(s *State) { s.showHidden = show }
}

// New creates a panel showing dir. If dir cannot be read the panel falls
// back to the nearest readable parent.
func New(id types.PanelID, dir string, opts ...Option) (*State, error) {
	s := &State{
		id:       id,
		read:     fsys.ReadSnapshot,
		selected: make(map[string]struct{}),
		cursor:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.LogWithFields(log.F("panel", id.String()))

	snap, err := s.readNearest(dir)
	if err != nil {
		return nil, err
	}
	s.replace(snap, "")
	return s, nil
}

// ID returns which panel this is
func (s *State) ID() types.PanelID { return s.id }

// Path returns the directory the panel shows
func (s *State) Path() string { return s.snapshot.Path }

// Snapshot returns the current snapshot
func (s *State) Snapshot() *types.DirectorySnapshot { return s.snapshot }

// Visible returns the sorted, filtered view. Callers must not modify it.
func (s *State) Visible() []types.FileEntry { return s.view }

// Cursor returns the cursor index into Visible, or -1 when the view is empty
func (s *State) Cursor() int { return s.cursor }

// SortKey returns the active sort key and direction
func (s *State) SortKey() (types.SortKey, bool) { return s.sortKey, s.descending }

// ShowHidden reports whether hidden entries are visible
func (s *State) ShowHidden() bool { return s.showHidden }

// Current returns the entry under the cursor
func (s *State) Current() (types.FileEntry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.view) {
		return types.FileEntry{}, false
	}
	return s.view[s.cursor], true
}

// NavigateInto opens entry. The panel is unchanged when it fails.
func (s *State) NavigateInto(entry types.FileEntry) error {
	if !entry.IsDirLike() {
		return errors.NewFileError("not a directory", entry.Path, errors.NotADirectory, nil)
	}
	snap, err := s.read(entry.Path)
	if err != nil {
		return err
	}
	s.logger.With(log.F("path", snap.Path)).Debug("navigate into")
	s.replace(snap, "")
	return nil
}

// NavigateUp moves to the parent directory and puts the cursor on the
// directory just left. At the filesystem root it does nothing.
func (s *State) NavigateUp() error {
	current := s.snapshot.Path
	parent := filepath.Dir(current)
	if parent == current {
		return nil
	}
	snap, err := s.read(parent)
	if err != nil {
		return err
	}
	s.replace(snap, current)
	return nil
}

// ChangeDir jumps straight to dir
func (s *State) ChangeDir(dir string) error {
	snap, err := s.read(dir)
	if err != nil {
		return err
	}
	s.replace(snap, "")
	return nil
}

// Refresh re-reads the directory. The cursor stays on the same entry when
// it still exists, and selections of vanished entries are dropped. If the
// directory itself is gone the panel moves to the nearest existing parent.
func (s *State) Refresh() error {
	keep := ""
	if cur, ok := s.Current(); ok {
		keep = cur.Path
	}
	prevPath := s.snapshot.Path

	snap, err := s.readNearest(prevPath)
	if err != nil {
		return err
	}
	if snap.Path != prevPath {
		s.replace(snap, prevPath)
		return nil
	}

	s.snapshot = snap
	for path := range s.selected {
		if _, ok := snap.Lookup(path); !ok {
			delete(s.selected, path)
		}
	}
	s.rebuild(keep)
	return nil
}

// ToggleSelection flips the selection of path. Paths that are not part
// of the current snapshot are ignored. It returns whether path is selected
// afterwards.
func (s *State) ToggleSelection(path string) bool {
	if _, ok := s.snapshot.Lookup(path); !ok {
		return false
	}
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
		return false
	}
	s.selected[path] = struct{}{}
	return true
}

// ToggleCurrent toggles the entry under the cursor and advances the cursor
func (s *State) ToggleCurrent() {
	cur, ok := s.Current()
	if !ok {
		return
	}
	s.ToggleSelection(cur.Path)
	s.MoveCursor(1)
}

// IsSelected reports whether path is selected
func (s *State) IsSelected(path string) bool {
	_, ok := s.selected[path]
	return ok
}

// Selected returns the selected paths in display order. Hidden entries
// stay selected while filtered out and are included.
func (s *State) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for _, e := range s.sorted {
		if _, ok := s.selected[e.Path]; ok {
			out = append(out, e.Path)
		}
	}
	return out
}

// SelectionSize returns the number of selected entries and their total
// size in bytes (directory contents are not counted).
func (s *State) SelectionSize() (int, int64) {
	var total int64
	for _, e := range s.sorted {
		if _, ok := s.selected[e.Path]; ok {
			total += e.Size
		}
	}
	return len(s.selected), total
}

// Targets returns what an operation should act on: the selection, or the
// entry under the cursor when nothing is selected.
func (s *State) Targets() []string {
	if len(s.selected) > 0 {
		return s.Selected()
	}
	if cur, ok := s.Current(); ok {
		return []string{cur.Path}
	}
	return nil
}

// ClearSelection deselects everything
func (s *State) ClearSelection() {
	s.selected = make(map[string]struct{})
}

// InvertSelection flips the selection of every visible entry
func (s *State) InvertSelection() {
	for _, e := range s.view {
		if _, ok := s.selected[e.Path]; ok {
			delete(s.selected, e.Path)
		} else {
			s.selected[e.Path] = struct{}{}
		}
	}
}

// SelectPattern adds every visible entry whose name matches the shell
// pattern (for example "*.{jpg,png}"). It returns how many were added.
func (s *State) SelectPattern(pattern string) (int, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid pattern %q", pattern)
	}
	added := 0
	for _, e := range s.view {
		if !g.Match(e.Name) {
			continue
		}
		if _, ok := s.selected[e.Path]; !ok {
			s.selected[e.Path] = struct{}{}
			added++
		}
	}
	return added, nil
}

// Jump moves the cursor to the visible entry that best fuzzy-matches
// query. It reports whether anything matched.
func (s *State) Jump(query string) bool {
	if query == "" || len(s.view) == 0 {
		return false
	}
	matches := fuzzy.FindFrom(query, nameSource(s.view))
	if len(matches) == 0 {
		return false
	}
	s.cursor = matches[0].Index
	return true
}

type nameSource []types.FileEntry

func (n nameSource) String(i int) string { return n[i].Name }
func (n nameSource) Len() int            { return len(n) }

// SetSort changes the ordering; the cursor follows its entry
func (s *State) SetSort(key types.SortKey, descending bool) {
	keep := ""
	if cur, ok := s.Current(); ok {
		keep = cur.Path
	}
	s.sortKey = key
	s.descending = descending
	s.rebuild(keep)
}

// SetShowHidden changes the hidden filter. Selection membership is not
// touched; the cursor follows its entry or is clamped.
func (s *State) SetShowHidden(show bool) {
	keep := ""
	if cur, ok := s.Current(); ok {
		keep = cur.Path
	}
	s.showHidden = show
	s.rebuild(keep)
}

// MoveCursor moves the cursor by delta, clamped to the view
func (s *State) MoveCursor(delta int) {
	s.SetCursor(s.cursor + delta)
}

// SetCursor places the cursor at i, clamped to the view
func (s *State) SetCursor(i int) {
	s.cursor = clamp(i, len(s.view))
}

// FocusPath moves the cursor to path if it is visible
func (s *State) FocusPath(path string) bool {
	for i, e := range s.view {
		if e.Path == path {
			s.cursor = i
			return true
		}
	}
	return false
}

// replace swaps in a snapshot of another directory
func (s *State) replace(snap *types.DirectorySnapshot, focus string) {
	s.snapshot = snap
	s.selected = make(map[string]struct{})
	s.cursor = 0
	s.rebuild(focus)
}

// rebuild derives sorted and view from the snapshot, then restores the
// cursor onto focus when possible.
func (s *State) rebuild(focus string) {
	s.sorted = make([]types.FileEntry, len(s.snapshot.Entries))
	copy(s.sorted, s.snapshot.Entries)
	SortEntries(s.sorted, s.sortKey, s.descending)

	s.view = s.view[:0:0]
	for _, e := range s.sorted {
		if e.IsHidden && !s.showHidden {
			continue
		}
		s.view = append(s.view, e)
	}

	if focus != "" && s.FocusPath(focus) {
		return
	}
	s.cursor = clamp(s.cursor, len(s.view))
}

func (s *State) readNearest(dir string) (*types.DirectorySnapshot, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("invalid directory path", dir, errors.InvalidPath, err)
	}
	var firstErr error
	for {
		snap, err := s.read(abs)
		if err == nil {
			return snap, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, firstErr
		}
		s.logger.WithError(err).Warn("directory unavailable, trying parent")
		abs = parent
	}
}

func clamp(i, n int) int {
	if n == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SortEntries orders entries in place: directories (and links to them)
// first, then by key. Descending reverses the key only; ties are always
// broken by case-insensitive name, ascending.
func SortEntries(entries []types.FileEntry, key types.SortKey, descending bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDirLike() != b.IsDirLike() {
			return a.IsDirLike()
		}
		if c := compareBy(a, b, key); c != 0 {
			if descending {
				return c > 0
			}
			return c < 0
		}
		return compareNames(a, b) < 0
	})
}

func compareBy(a, b types.FileEntry, key types.SortKey) int {
	switch key {
	case types.SortBySize:
		return compareInt(a.Size, b.Size)
	case types.SortByDate:
		return a.ModifiedAt.Compare(b.ModifiedAt)
	case types.SortByExtension:
		return strings.Compare(a.Ext(), b.Ext())
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

func compareNames(a, b types.FileEntry) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
