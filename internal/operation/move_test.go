package operation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
	"twinpane/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveAndUndo(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	testutils.CreateTree(t, a, map[string]string{
		"x.txt":   "0123456789",
		"y/":      "",
		".hidden": "12345",
	})
	require.NoError(t, os.MkdirAll(b, 0755))
	e := newEngine(t)

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(a, "x.txt")}, DestDir: b}, nil)
	require.True(t, res.OK(), res.Summary())

	assert.FileExists(t, filepath.Join(b, "x.txt"))
	assert.NoFileExists(t, filepath.Join(a, "x.txt"))
	assert.Equal(t, &MoveBack{Pairs: []MovedPair{
		{From: filepath.Join(b, "x.txt"), To: filepath.Join(a, "x.txt")},
	}}, res.Record)

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.FileExists(t, filepath.Join(a, "x.txt"))
	assert.NoFileExists(t, filepath.Join(b, "x.txt"))
}

func TestMoveDirectoryProgress(t *testing.T) {
	srcDir, dstDir := workspace(t, map[string]string{"d/a.txt": "aa", "d/b.txt": "bbb"}, nil)
	e := newEngine(t)

	var last Progress
	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "d")}, DestDir: dstDir}, func(p Progress) { last = p })
	require.True(t, res.OK())

	assert.Equal(t, 3, last.EntriesDone)
	assert.Equal(t, last.TotalEntries, last.EntriesDone)
	assert.Equal(t, int64(5), last.BytesDone)
	assert.Equal(t, map[string]string{"d/": "", "d/a.txt": "aa", "d/b.txt": "bbb"}, testutils.ReadTree(t, dstDir))
	assert.Empty(t, testutils.ListNames(t, srcDir))
}

func TestMoveMergesDirectories(t *testing.T) {
	srcDir, dstDir := workspace(t,
		map[string]string{"d/a.txt": "a"},
		map[string]string{"d/b.txt": "b"},
	)
	srcBefore := testutils.ReadTree(t, srcDir)
	dstBefore := testutils.ReadTree(t, dstDir)
	e := newEngine(t)

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "d")}, DestDir: dstDir}, nil)
	require.True(t, res.OK(), res.Summary())

	assert.Equal(t, map[string]string{"d/": "", "d/a.txt": "a", "d/b.txt": "b"}, testutils.ReadTree(t, dstDir))
	assert.Empty(t, testutils.ListNames(t, srcDir))

	rec := res.Record.(*MoveBack)
	assert.Equal(t, []string{filepath.Join(srcDir, "d")}, rec.Emptied)

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.Equal(t, srcBefore, testutils.ReadTree(t, srcDir))
	assert.Equal(t, dstBefore, testutils.ReadTree(t, dstDir))
}

func TestMoveConflictRename(t *testing.T) {
	srcDir, dstDir := workspace(t,
		map[string]string{"a.txt": "new"},
		map[string]string{"a.txt": "old"},
	)
	e := newEngine(t, WithConflictPolicy(conflict.AlwaysRename))

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "a.txt")}, DestDir: dstDir}, nil)
	require.True(t, res.OK())
	assert.Equal(t, map[string]string{"a.txt": "old", "a (1).txt": "new"}, testutils.ReadTree(t, dstDir))

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.Equal(t, map[string]string{"a.txt": "old"}, testutils.ReadTree(t, dstDir))
	assert.Equal(t, map[string]string{"a.txt": "new"}, testutils.ReadTree(t, srcDir))
}

func TestMoveOverwriteUndoRestoresReplaced(t *testing.T) {
	srcDir, dstDir := workspace(t,
		map[string]string{"a.txt": "new"},
		map[string]string{"a.txt": "old"},
	)
	e := newEngine(t, WithConflictPolicy(conflict.AlwaysOverwrite), WithBackupOverwritten(true))

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "a.txt")}, DestDir: dstDir}, nil)
	require.True(t, res.OK())
	assert.Equal(t, map[string]string{"a.txt": "new"}, testutils.ReadTree(t, dstDir))

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.Equal(t, map[string]string{"a.txt": "old"}, testutils.ReadTree(t, dstDir))
	assert.Equal(t, map[string]string{"a.txt": "new"}, testutils.ReadTree(t, srcDir))
}

func TestMoveOntoItselfIsNoop(t *testing.T) {
	srcDir, _ := workspace(t, map[string]string{"a.txt": "a"}, nil)
	e := newEngine(t)

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "a.txt")}, DestDir: srcDir}, nil)
	require.True(t, res.OK())
	assert.Nil(t, res.Record)
	assert.Equal(t, []string{"a.txt"}, testutils.ListNames(t, srcDir))
}

func TestMoveIntoOwnSubtree(t *testing.T) {
	srcDir, _ := workspace(t, map[string]string{"d/sub/": ""}, nil)
	e := newEngine(t)

	d := filepath.Join(srcDir, "d")
	res := e.Run(context.Background(), Move{Sources: []string{d}, DestDir: filepath.Join(d, "sub")}, nil)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, errors.NameConflict, errors.KindOf(res.Failed[0].Err))
	assert.DirExists(t, filepath.Join(d, "sub"))
}

func TestMoveUndoWhenOriginalReoccupied(t *testing.T) {
	srcDir, dstDir := workspace(t, map[string]string{"a.txt": "a"}, nil)
	e := newEngine(t)

	res := e.Run(context.Background(), Move{Sources: []string{filepath.Join(srcDir, "a.txt")}, DestDir: dstDir}, nil)
	require.True(t, res.OK())
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("other"), 0644))

	err := e.Undo(context.Background(), res.Record)
	require.Error(t, err)
	assert.True(t, errors.IsNameConflict(err))
	assert.Equal(t, "other", testutils.ReadTree(t, srcDir)["a.txt"])
}

func TestDeletePermanent(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"a.txt": "a", "d/b.txt": "b", "keep": "k"})
	e := newEngine(t)

	missing := filepath.Join(dir, "missing")
	res := e.Run(context.Background(), Delete{Targets: []string{
		filepath.Join(dir, "a.txt"),
		missing,
		filepath.Join(dir, "d"),
	}}, nil)

	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "d")}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, missing, res.Failed[0].Path)
	assert.True(t, errors.IsSourceVanished(res.Failed[0].Err))
	assert.Nil(t, res.Record)
	assert.Equal(t, []string{"keep"}, testutils.ListNames(t, dir))
}

func TestDeleteRecoverable(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"a.txt": "a", "d/b.txt": "b"})
	before := testutils.ReadTree(t, dir)
	e := newEngine(t, WithRecoverableDelete(true))

	res := e.Run(context.Background(), Delete{Targets: []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "d"),
	}}, nil)
	require.True(t, res.OK())
	assert.Empty(t, testutils.ListNames(t, dir))

	rec, ok := res.Record.(*RestoreFromBackup)
	require.True(t, ok)
	require.Len(t, rec.Items, 2)
	for _, item := range rec.Items {
		assert.True(t, e.Holding().Exists(item))
	}

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.Equal(t, before, testutils.ReadTree(t, dir))
	assert.Empty(t, testutils.ListNames(t, e.Holding().Root()), "restored slots are released")
}

func TestDeleteUndoAfterPurge(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"a.txt": "a"})
	e := newEngine(t, WithRecoverableDelete(true))

	res := e.Run(context.Background(), Delete{Targets: []string{filepath.Join(dir, "a.txt")}}, nil)
	require.True(t, res.OK())
	require.NoError(t, e.Holding().Purge())

	err := e.Undo(context.Background(), res.Record)
	require.Error(t, err)
	assert.True(t, errors.IsUndoUnavailable(err))
}

func TestDiscardReleasesHolding(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"a.txt": "a"})
	e := newEngine(t, WithRecoverableDelete(true))

	res := e.Run(context.Background(), Delete{Targets: []string{filepath.Join(dir, "a.txt")}}, nil)
	require.NotNil(t, res.Record)
	item := res.Record.(*RestoreFromBackup).Items[0]

	e.Discard(res.Record)
	assert.False(t, e.Holding().Exists(item))
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"old.txt": "o", "taken.txt": "t"})
	e := newEngine(t)

	t.Run("success and undo", func(t *testing.T) {
		res := e.Run(context.Background(), Rename{Source: filepath.Join(dir, "old.txt"), NewName: "new.txt"}, nil)
		require.True(t, res.OK())
		assert.Equal(t, []string{"new.txt", "taken.txt"}, testutils.ListNames(t, dir))
		assert.Equal(t, &RenameBack{Path: filepath.Join(dir, "new.txt"), OldName: "old.txt"}, res.Record)

		require.NoError(t, e.Undo(context.Background(), res.Record))
		assert.Equal(t, []string{"old.txt", "taken.txt"}, testutils.ListNames(t, dir))
	})

	t.Run("existing name conflicts", func(t *testing.T) {
		res := e.Run(context.Background(), Rename{Source: filepath.Join(dir, "old.txt"), NewName: "taken.txt"}, nil)
		require.Len(t, res.Failed, 1)
		assert.True(t, errors.IsNameConflict(res.Failed[0].Err))
		assert.Nil(t, res.Record)
		assert.Equal(t, "t", testutils.ReadTree(t, dir)["taken.txt"])
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "..", "a/b"} {
			res := e.Run(context.Background(), Rename{Source: filepath.Join(dir, "old.txt"), NewName: name}, nil)
			require.Len(t, res.Failed, 1, name)
			assert.Equal(t, errors.InvalidPath, errors.KindOf(res.Failed[0].Err), name)
		}
	})

	t.Run("vanished source", func(t *testing.T) {
		res := e.Run(context.Background(), Rename{Source: filepath.Join(dir, "gone.txt"), NewName: "x.txt"}, nil)
		require.Len(t, res.Failed, 1)
		assert.True(t, errors.IsSourceVanished(res.Failed[0].Err))
	})
}

func TestMakeDir(t *testing.T) {
	dir := t.TempDir()
	e := newEngine(t)

	res := e.Run(context.Background(), MakeDir{Parent: dir, Name: "new"}, nil)
	require.True(t, res.OK())
	assert.DirExists(t, filepath.Join(dir, "new"))
	assert.Equal(t, &RemoveDir{Path: filepath.Join(dir, "new")}, res.Record)

	again := e.Run(context.Background(), MakeDir{Parent: dir, Name: "new"}, nil)
	require.Len(t, again.Failed, 1)
	assert.True(t, errors.IsNameConflict(again.Failed[0].Err))

	t.Run("undo refuses a non-empty directory", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "new", "f"), []byte("x"), 0644))
		require.Error(t, e.Undo(context.Background(), res.Record))
		assert.DirExists(t, filepath.Join(dir, "new"))
		require.NoError(t, os.Remove(filepath.Join(dir, "new", "f")))
	})

	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.NoDirExists(t, filepath.Join(dir, "new"))
}

func TestResultSummary(t *testing.T) {
	r := Result{
		Kind:      KindCopy,
		Succeeded: []string{"a", "b"},
		Skipped:   []string{"c"},
		Failed:    []Failure{{Path: "d", Err: errors.New("boom")}},
		Cancelled: true,
		Bytes:     2048,
	}
	assert.Equal(t, "copy: 2 done, 2.0 kB, 1 skipped, 1 failed, cancelled", r.Summary())
	assert.False(t, r.OK())
	assert.True(t, Result{Kind: KindMove}.OK())
}

func TestMoveRelativeSourceOntoItselfIsNoop(t *testing.T) {
	root := resolvedTempDir(t)
	testutils.CreateTree(t, root, map[string]string{"a.txt": "a"})
	chdir(t, root)
	asked := conflict.AskerFunc(func(ctx context.Context, c conflict.Conflict) (conflict.Decision, error) {
		t.Errorf("unexpected conflict for %s", c.Existing.Path)
		return conflict.Decision{Action: conflict.Abort}, nil
	})
	e := newEngine(t, WithConflictPolicy(conflict.AlwaysAsk), WithAsker(asked))

	res := e.Run(context.Background(), Move{Sources: []string{"a.txt"}, DestDir: root}, nil)
	require.True(t, res.OK(), res.Summary())
	assert.Nil(t, res.Record)
	assert.Equal(t, map[string]string{"a.txt": "a"}, testutils.ReadTree(t, root))
}

func TestMoveRelativeSourceIntoOwnSubtree(t *testing.T) {
	root := resolvedTempDir(t)
	testutils.CreateTree(t, root, map[string]string{"d/sub/": "", "d/a.txt": "a"})
	chdir(t, root)
	e := newEngine(t)

	res := e.Run(context.Background(), Move{Sources: []string{"d"}, DestDir: filepath.Join("d", "sub")}, nil)
	require.Len(t, res.Failed, 1)
	assert.True(t, errors.IsNameConflict(res.Failed[0].Err))
	assert.Equal(t, map[string]string{"d/": "", "d/sub/": "", "d/a.txt": "a"}, testutils.ReadTree(t, root))
}

func TestDeleteRelativeTargetRestoresToAbsolutePath(t *testing.T) {
	root := resolvedTempDir(t)
	testutils.CreateTree(t, root, map[string]string{"a.txt": "a"})
	chdir(t, root)
	e := newEngine(t, WithRecoverableDelete(true))

	res := e.Run(context.Background(), Delete{Targets: []string{"a.txt"}}, nil)
	require.True(t, res.OK(), res.Summary())
	rec := res.Record.(*RestoreFromBackup)
	assert.Equal(t, filepath.Join(root, "a.txt"), rec.Items[0].Original)

	chdir(t, t.TempDir())
	require.NoError(t, e.Undo(context.Background(), res.Record))
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}
