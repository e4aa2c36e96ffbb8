package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"twinpane/internal/errors"
	"twinpane/internal/log"
)

// Record is the inverse of a completed operation
type Record interface {
	Kind() Kind
	Describe() string
	revert(ctx context.Context, e *Engine) error
	release(e *Engine)
	empty() bool
}

// DeleteCreated undoes a Copy by removing what it created. Entries an
// overwrite displaced are put back afterwards.
type DeleteCreated struct {
	Created  []string
	Replaced []Held
}

func (*DeleteCreated) Kind() Kind { return KindCopy }

func (r *DeleteCreated) Describe() string {
	return fmt.Sprintf("remove %d copied entries", len(r.Created))
}

func (r *DeleteCreated) empty() bool {
	return len(r.Created) == 0 && len(r.Replaced) == 0
}

// revert removes children before their parents. Paths already gone are
// fine; a directory that gained new content is left and reported.
func (r *DeleteCreated) revert(ctx context.Context, e *Engine) error {
	var errs []error
	for i := len(r.Created) - 1; i >= 0; i-- {
		path := r.Created[i]
		if _, err := os.Lstat(path); os.IsNotExist(err) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, errors.Classify("cannot remove copied entry", path, err))
		}
	}
	errs = append(errs, restoreAll(ctx, e, r.Replaced)...)
	return errors.Join(errs...)
}

func (r *DeleteCreated) release(e *Engine) {
	releaseAll(e, r.Replaced)
}

// MovedPair is one completed move: the entry now lives at From and
// originally lived at To
type MovedPair struct {
	From string
	To   string
}

// MoveBack undoes a Move
type MoveBack struct {
	Pairs []MovedPair
	// Partial lists moves whose copy landed while part of the source
	// could not be removed; undo merges the copy back into what remains
	Partial  []MovedPair
	Replaced []Held
	// Emptied lists source directories removed after their children were
	// merged into an existing destination
	Emptied []string
}

func (*MoveBack) Kind() Kind { return KindMove }

func (r *MoveBack) Describe() string {
	return fmt.Sprintf("move %d entries back", len(r.Pairs)+len(r.Partial))
}

func (r *MoveBack) empty() bool {
	return len(r.Pairs) == 0 && len(r.Partial) == 0 && len(r.Replaced) == 0 && len(r.Emptied) == 0
}

func (r *MoveBack) revert(ctx context.Context, e *Engine) error {
	var errs []error
	for _, dir := range r.Emptied {
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, errors.Classify("cannot recreate directory", dir, err))
		}
	}
	for i := len(r.Pairs) - 1; i >= 0; i-- {
		p := r.Pairs[i]
		if err := moveBack(ctx, e, p); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range r.Partial {
		if err := mergeBack(ctx, e, p.From, p.To); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, restoreAll(ctx, e, r.Replaced)...)
	return errors.Join(errs...)
}

func moveBack(ctx context.Context, e *Engine, p MovedPair) error {
	if _, err := os.Lstat(p.From); err != nil {
		return errors.Classify("moved entry is gone", p.From, err)
	}
	if _, err := os.Lstat(p.To); err == nil {
		return errors.NewFileError("original location is occupied", p.To, errors.NameConflict, nil)
	}
	if err := os.MkdirAll(filepath.Dir(p.To), 0755); err != nil {
		return errors.Classify("cannot recreate parent", filepath.Dir(p.To), err)
	}
	return e.relocate(ctx, p.From, p.To, nil)
}

// mergeBack returns the copy at from to to, entry by entry. Whatever still
// exists at to is the original and wins; its copy is dropped.
func mergeBack(ctx context.Context, e *Engine, from, to string) error {
	if err := checkpoint(ctx, from); err != nil {
		return err
	}
	info, err := os.Lstat(from)
	if err != nil {
		return errors.Classify("moved entry is gone", from, err)
	}
	existing, err := os.Lstat(to)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
			return errors.Classify("cannot recreate parent", filepath.Dir(to), err)
		}
		return e.relocate(ctx, from, to, nil)
	case err != nil:
		return errors.Classify("cannot inspect original location", to, err)
	}

	if !info.IsDir() || !existing.IsDir() {
		if err := os.RemoveAll(from); err != nil {
			return errors.Classify("cannot remove duplicate", from, err)
		}
		return nil
	}

	children, err := os.ReadDir(from)
	if err != nil {
		return errors.Classify("cannot read directory", from, err)
	}
	var errs []error
	for _, c := range children {
		if err := mergeBack(ctx, e, filepath.Join(from, c.Name()), filepath.Join(to, c.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		if err := os.Remove(from); err != nil {
			errs = append(errs, errors.Classify("cannot remove merged directory", from, err))
		}
	}
	return errors.Join(errs...)
}

func (r *MoveBack) release(e *Engine) {
	releaseAll(e, r.Replaced)
}

// RestoreFromBackup undoes a recoverable Delete
type RestoreFromBackup struct {
	Items []Held
}

func (*RestoreFromBackup) Kind() Kind { return KindDelete }

func (r *RestoreFromBackup) Describe() string {
	return fmt.Sprintf("restore %d deleted entries", len(r.Items))
}

func (r *RestoreFromBackup) empty() bool { return len(r.Items) == 0 }

func (r *RestoreFromBackup) revert(ctx context.Context, e *Engine) error {
	return errors.Join(restoreAll(ctx, e, r.Items)...)
}

func (r *RestoreFromBackup) release(e *Engine) {
	releaseAll(e, r.Items)
}

// RenameBack undoes a Rename
type RenameBack struct {
	Path    string
	OldName string
}

func (*RenameBack) Kind() Kind { return KindRename }

func (r *RenameBack) Describe() string {
	return fmt.Sprintf("rename %s back to %s", filepath.Base(r.Path), r.OldName)
}

func (r *RenameBack) empty() bool { return filepath.Base(r.Path) == r.OldName }

func (r *RenameBack) revert(ctx context.Context, e *Engine) error {
	return e.rename(r.Path, filepath.Join(filepath.Dir(r.Path), r.OldName))
}

func (*RenameBack) release(*Engine) {}

// RemoveDir undoes a MakeDir. It only succeeds while the directory is empty.
type RemoveDir struct {
	Path string
}

func (*RemoveDir) Kind() Kind { return KindMakeDir }

func (r *RemoveDir) Describe() string {
	return "remove directory " + r.Path
}

func (*RemoveDir) empty() bool { return false }

func (r *RemoveDir) revert(ctx context.Context, e *Engine) error {
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return errors.Classify("cannot remove directory", r.Path, err)
	}
	return nil
}

func (*RemoveDir) release(*Engine) {}

func restoreAll(ctx context.Context, e *Engine, items []Held) []error {
	var errs []error
	for _, item := range items {
		if err := e.restore(ctx, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func releaseAll(e *Engine, items []Held) {
	for _, item := range items {
		if err := e.holding.Release(item); err != nil {
			log.LogWithError(err).Warn("cannot release held entry")
		}
	}
}
