package operation

import (
	"context"
	"os"
	"path/filepath"

	"twinpane/internal/errors"
)

func (o Delete) execute(ctx context.Context, x *execution) Record {
	rec := &RestoreFromBackup{}

	for _, target := range o.Targets {
		if err := checkpoint(ctx, target); err != nil {
			x.stop(err)
			break
		}
		target, err := absolute(target)
		if err != nil {
			x.fail(target, err)
			continue
		}
		x.current(target)
		before := x.prog

		if err := x.remove(ctx, rec, target); err != nil {
			if errors.IsFatal(err) {
				x.stop(err)
				break
			}
			x.fail(target, err)
			continue
		}
		x.succeed(target)
		x.settle(target, before)
	}

	if !x.engine.recoverableDelete {
		// Permanent deletes cannot be undone
		return nil
	}
	return rec
}

func (x *execution) remove(ctx context.Context, rec *RestoreFromBackup, target string) error {
	if filepath.Dir(target) == target {
		return errors.NewFileError("refusing to delete a filesystem root", target, errors.InvalidOperation, nil)
	}
	if _, err := os.Lstat(target); err != nil {
		return errors.Classify("cannot delete", target, err)
	}

	if x.engine.recoverableDelete {
		item, err := x.engine.hold(ctx, target)
		if sourceRemains(err) {
			// what did get removed is only in the holding area now
			rec.Items = append(rec.Items, item)
			return errors.Wrapf(err, "partly deleted, complete copy kept at %s", item.Location)
		}
		if err != nil {
			return err
		}
		rec.Items = append(rec.Items, item)
		return nil
	}

	if err := removeAll(target); err != nil {
		return errors.Classify("cannot delete", target, err)
	}
	return nil
}
