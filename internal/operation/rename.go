package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"twinpane/internal/errors"
)

func (o Rename) execute(ctx context.Context, x *execution) Record {
	src := filepath.Clean(o.Source)
	x.current(src)

	if err := validName(o.NewName); err != nil {
		x.fail(src, err)
		return nil
	}
	dst := filepath.Join(filepath.Dir(src), o.NewName)
	if err := x.engine.rename(src, dst); err != nil {
		x.fail(src, err)
		return nil
	}

	x.succeed(src)
	x.entryDone()
	return &RenameBack{Path: dst, OldName: filepath.Base(src)}
}

func (o MakeDir) execute(ctx context.Context, x *execution) Record {
	path := filepath.Join(o.Parent, o.Name)
	x.current(path)

	if err := validName(o.Name); err != nil {
		x.fail(path, err)
		return nil
	}
	if err := destination(o.Parent); err != nil {
		x.fail(path, err)
		return nil
	}
	if err := os.Mkdir(path, 0755); err != nil {
		x.fail(path, errors.Classify("cannot create directory", path, err))
		return nil
	}

	x.succeed(path)
	x.entryDone()
	return &RemoveDir{Path: path}
}

// rename renames src to dst without replacing anything. A target that is
// the same file, as with a case-only rename on a case-insensitive
// filesystem, is not a conflict.
func (e *Engine) rename(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Classify("cannot rename", src, err)
	}
	if src == dst {
		return nil
	}
	if existing, err := os.Lstat(dst); err == nil && !os.SameFile(info, existing) {
		return errors.NewFileError("name already exists", dst, errors.NameConflict, nil)
	}
	if err := os.Rename(src, dst); err != nil {
		return errors.Classify("cannot rename", src, err)
	}
	return nil
}

// validName accepts a single path element
func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return errors.NewFileError("invalid name", name, errors.InvalidPath, nil)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return errors.NewFileError("name must not contain a path separator", name, errors.InvalidPath, nil)
	}
	return nil
}
