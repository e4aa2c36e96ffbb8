package panel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"twinpane/internal/errors"
	"twinpane/pkg/testutils"
	"twinpane/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []types.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// scenarioDir builds {x.txt (10B), y/ (dir), .hidden (5B)}
func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{
		"x.txt":   "0123456789",
		"y/":      "",
		".hidden": "12345",
	})
	return dir
}

func TestVisibleViewDirFirst(t *testing.T) {
	dir := scenarioDir(t)

	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "x.txt"}, names(p.Visible()))
	assert.Equal(t, 0, p.Cursor())

	p.SetShowHidden(true)
	assert.Equal(t, []string{"y", ".hidden", "x.txt"}, names(p.Visible()))
}

func TestEmptyDirectoryCursor(t *testing.T) {
	p, err := New(types.RightPanel, t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, p.Visible())
	assert.Equal(t, -1, p.Cursor())

	_, ok := p.Current()
	assert.False(t, ok)

	p.MoveCursor(1)
	assert.Equal(t, -1, p.Cursor())
	assert.Nil(t, p.Targets())
}

func TestNavigation(t *testing.T) {
	dir := scenarioDir(t)
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	t.Run("into a file fails", func(t *testing.T) {
		x, ok := p.Snapshot().Lookup(filepath.Join(dir, "x.txt"))
		require.True(t, ok)

		err := p.NavigateInto(x)
		require.Error(t, err)
		assert.True(t, errors.IsNotADirectory(err))
		assert.Equal(t, dir, p.Path())
	})

	t.Run("into a directory resets cursor and selection", func(t *testing.T) {
		p.ToggleSelection(filepath.Join(dir, "x.txt"))
		y, ok := p.Snapshot().Lookup(filepath.Join(dir, "y"))
		require.True(t, ok)

		require.NoError(t, p.NavigateInto(y))
		assert.Equal(t, filepath.Join(dir, "y"), p.Path())
		assert.Empty(t, p.Selected())
		assert.Equal(t, -1, p.Cursor())
	})

	t.Run("up focuses the directory left", func(t *testing.T) {
		require.NoError(t, p.NavigateUp())
		assert.Equal(t, dir, p.Path())
		cur, ok := p.Current()
		require.True(t, ok)
		assert.Equal(t, "y", cur.Name)
	})

	t.Run("up at root is a no-op", func(t *testing.T) {
		root := filepath.VolumeName(dir) + string(filepath.Separator)
		require.NoError(t, p.ChangeDir(root))
		require.NoError(t, p.NavigateUp())
		assert.Equal(t, root, p.Path())
	})
}

func TestSelection(t *testing.T) {
	dir := scenarioDir(t)
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	x := filepath.Join(dir, "x.txt")
	hidden := filepath.Join(dir, ".hidden")

	assert.True(t, p.ToggleSelection(x))
	assert.True(t, p.IsSelected(x))
	assert.False(t, p.ToggleSelection(x))
	assert.False(t, p.IsSelected(x))

	// Paths outside the snapshot are ignored
	assert.False(t, p.ToggleSelection(filepath.Join(dir, "nope")))
	assert.Empty(t, p.Selected())

	// Hidden entries stay selected while filtered out
	p.SetShowHidden(true)
	p.ToggleSelection(hidden)
	p.ToggleSelection(x)
	p.SetShowHidden(false)
	assert.ElementsMatch(t, []string{hidden, x}, p.Selected())
	p.SetShowHidden(true)
	assert.ElementsMatch(t, []string{hidden, x}, p.Selected())

	count, size := p.SelectionSize()
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(15), size)

	assert.Equal(t, p.Selected(), p.Targets())

	p.ClearSelection()
	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, []string{cur.Path}, p.Targets())
}

func TestToggleCurrentAdvances(t *testing.T) {
	dir := scenarioDir(t)
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	p.ToggleCurrent()
	assert.True(t, p.IsSelected(filepath.Join(dir, "y")))
	assert.Equal(t, 1, p.Cursor())

	p.ToggleCurrent()
	assert.True(t, p.IsSelected(filepath.Join(dir, "x.txt")))
	assert.Equal(t, 1, p.Cursor(), "cursor stays on the last entry")
}

func TestSelectPatternAndInvert(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{
		"a.jpg":   "a",
		"b.png":   "b",
		"c.txt":   "c",
		"photos/": "",
	})
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	n, err := p.SelectPattern("*.{jpg,png}")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}, p.Selected())

	p.InvertSelection()
	assert.ElementsMatch(t, []string{filepath.Join(dir, "c.txt"), filepath.Join(dir, "photos")}, p.Selected())
}

func TestJump(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{
		"alpha.txt":    "",
		"beta.txt":     "",
		"gamma_ray.md": "",
	})
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	assert.True(t, p.Jump("gray"))
	cur, _ := p.Current()
	assert.Equal(t, "gamma_ray.md", cur.Name)

	assert.False(t, p.Jump("zzz"))
	assert.False(t, p.Jump(""))
}

func TestSortKeys(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := func() []types.FileEntry {
		return []types.FileEntry{
			{Name: "b.txt", Size: 10, ModifiedAt: base.Add(2 * time.Hour)},
			{Name: "A.md", Size: 30, ModifiedAt: base},
			{Name: "c.go", Size: 10, ModifiedAt: base.Add(time.Hour)},
			{Name: "zdir", Kind: types.KindDirectory, ModifiedAt: base},
			{Name: "adir", Kind: types.KindDirectory, ModifiedAt: base.Add(time.Hour)},
			{Name: "link", Kind: types.KindSymlink, TargetIsDir: true},
		}
	}

	tests := []struct {
		name string
		key  types.SortKey
		desc bool
		want []string
	}{
		{"name", types.SortByName, false, []string{"adir", "link", "zdir", "A.md", "b.txt", "c.go"}},
		{"name desc", types.SortByName, true, []string{"zdir", "link", "adir", "c.go", "b.txt", "A.md"}},
		{"size ties by name", types.SortBySize, false, []string{"adir", "link", "zdir", "b.txt", "c.go", "A.md"}},
		{"size desc ties still ascending", types.SortBySize, true, []string{"adir", "link", "zdir", "A.md", "b.txt", "c.go"}},
		{"date", types.SortByDate, false, []string{"link", "zdir", "adir", "A.md", "c.go", "b.txt"}},
		{"ext", types.SortByExtension, false, []string{"adir", "link", "zdir", "c.go", "A.md", "b.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entries()
			SortEntries(e, tt.key, tt.desc)
			assert.Equal(t, tt.want, names(e))
		})
	}
}

func TestSetSortKeepsCursorEntry(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{
		"small.txt": "1",
		"big.txt":   "1234567890",
	})
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	require.True(t, p.FocusPath(filepath.Join(dir, "small.txt")))
	p.SetSort(types.SortBySize, true)

	assert.Equal(t, []string{"big.txt", "small.txt"}, names(p.Visible()))
	cur, _ := p.Current()
	assert.Equal(t, "small.txt", cur.Name)
	key, desc := p.SortKey()
	assert.Equal(t, types.SortBySize, key)
	assert.True(t, desc)
}

func TestRefresh(t *testing.T) {
	dir := scenarioDir(t)
	p, err := New(types.LeftPanel, dir)
	require.NoError(t, err)

	x := filepath.Join(dir, "x.txt")
	p.ToggleSelection(x)
	require.True(t, p.FocusPath(x))
	before := p.Snapshot()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("n"), 0644))
	require.NoError(t, p.Refresh())

	assert.NotSame(t, before, p.Snapshot(), "refresh replaces the snapshot")
	assert.Equal(t, []string{"y", "new.txt", "x.txt"}, names(p.Visible()))
	cur, _ := p.Current()
	assert.Equal(t, "x.txt", cur.Name)
	assert.True(t, p.IsSelected(x))

	// Vanished entries drop out of the selection and the cursor is clamped
	require.NoError(t, os.Remove(x))
	require.NoError(t, p.Refresh())
	assert.Empty(t, p.Selected())
	assert.Equal(t, 1, p.Cursor())
}

func TestRefreshAfterDirectoryRemoved(t *testing.T) {
	dir := scenarioDir(t)
	sub := filepath.Join(dir, "y")
	p, err := New(types.LeftPanel, sub)
	require.NoError(t, err)

	require.NoError(t, os.Remove(sub))
	require.NoError(t, p.Refresh())
	assert.Equal(t, dir, p.Path())
	cur, ok := p.Current()
	if ok {
		assert.NotEqual(t, "y", cur.Name)
	}
}

func TestNewFallsBackToParent(t *testing.T) {
	dir := t.TempDir()
	p, err := New(types.LeftPanel, filepath.Join(dir, "missing", "deeper"))
	require.NoError(t, err)
	assert.Equal(t, dir, p.Path())
}

func TestReaderInjection(t *testing.T) {
	calls := 0
	fake := func(dir string) (*types.DirectorySnapshot, error) {
		calls++
		return &types.DirectorySnapshot{
			Path: dir,
			Entries: []types.FileEntry{
				{Path: filepath.Join(dir, "only"), Name: "only"},
			},
		}, nil
	}

	p, err := New(types.RightPanel, "/virtual", WithReader(fake), WithSort(types.SortBySize, true), WithShowHidden(true))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"only"}, names(p.Visible()))
	assert.True(t, p.ShowHidden())
	assert.Equal(t, types.RightPanel, p.ID())
}
