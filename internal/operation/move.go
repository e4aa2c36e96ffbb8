package operation

import (
	"context"
	"os"
	"path/filepath"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
)

func (o Move) execute(ctx context.Context, x *execution) Record {
	rec := &MoveBack{}

	dest, err := filepath.Abs(o.DestDir)
	if err == nil {
		err = destination(dest)
	}
	if err != nil {
		x.stop(err)
		return rec
	}

	for _, src := range o.Sources {
		if err := checkpoint(ctx, src); err != nil {
			x.stop(err)
			break
		}
		src, err := absolute(src)
		if err != nil {
			x.fail(src, err)
			continue
		}
		dst := filepath.Join(dest, filepath.Base(src))
		before := x.prog

		if src == dst {
			x.succeed(src)
			x.settle(src, before)
			continue
		}
		if within(dest, src) {
			x.fail(src, errors.NewFileError("cannot move a directory into itself", src, errors.NameConflict, nil))
			continue
		}

		failed, skipped := len(x.result.Failed), len(x.result.Skipped)
		if err := x.moveEntry(ctx, rec, src, dst); err != nil {
			if errors.IsFatal(err) {
				x.stop(err)
				break
			}
			x.fail(src, err)
			continue
		}
		if len(x.result.Failed) == failed && len(x.result.Skipped) == skipped {
			x.succeed(src)
		}
		x.settle(src, before)
	}
	return rec
}

// moveEntry moves one node. Each completed move is recorded as a pair
// whatever strategy performed it, so undo treats them all alike.
func (x *execution) moveEntry(ctx context.Context, rec *MoveBack, src, dst string) error {
	if err := checkpoint(ctx, src); err != nil {
		return err
	}
	x.current(src)

	info, err := os.Lstat(src)
	if err != nil {
		return errors.Classify("cannot read source", src, err)
	}

	existing, err := os.Lstat(dst)
	switch {
	case err == nil:
		if info.IsDir() && existing.IsDir() {
			return x.mergeDir(ctx, rec, src, dst)
		}
		d, err := x.resolve(ctx, src, dst)
		if err != nil {
			return err
		}
		switch d.Action {
		case conflict.Skip:
			x.skip(src)
			return nil
		case conflict.Rename:
			dst = filepath.Join(filepath.Dir(dst), d.NewName)
		case conflict.Overwrite:
			if os.SameFile(info, existing) {
				return errors.NewFileError("cannot overwrite an entry with itself", dst, errors.NameConflict, nil)
			}
			if err := x.displace(ctx, dst, &rec.Replaced); err != nil {
				return err
			}
		}
	case !os.IsNotExist(err):
		return errors.Classify("cannot inspect destination", dst, err)
	}

	if err := x.engine.relocate(ctx, src, dst, x.addBytes); err != nil {
		if sourceRemains(err) {
			rec.Partial = append(rec.Partial, MovedPair{From: dst, To: src})
		}
		return err
	}
	rec.Pairs = append(rec.Pairs, MovedPair{From: dst, To: src})
	return nil
}

// mergeDir moves the children of src into the existing directory dst and
// removes src if nothing was left behind
func (x *execution) mergeDir(ctx context.Context, rec *MoveBack, src, dst string) error {
	children, err := os.ReadDir(src)
	if err != nil {
		return errors.Classify("cannot read directory", src, err)
	}
	for _, c := range children {
		child := filepath.Join(src, c.Name())
		if err := x.moveEntry(ctx, rec, child, filepath.Join(dst, c.Name())); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			x.fail(child, err)
		}
	}
	if err := os.Remove(src); err == nil {
		rec.Emptied = append(rec.Emptied, src)
	}
	return nil
}
