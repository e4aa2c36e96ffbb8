package operation

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
	"twinpane/internal/fsys"
)

func (o Copy) execute(ctx context.Context, x *execution) Record {
	rec := &DeleteCreated{}

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
		if within(dest, src) {
			x.fail(src, errors.NewFileError("cannot copy a directory into itself", src, errors.NameConflict, nil))
			continue
		}

		failed, skipped := len(x.result.Failed), len(x.result.Skipped)
		err = x.copyEntry(ctx, rec, src, filepath.Join(dest, filepath.Base(src)))
		if err != nil {
			if errors.IsFatal(err) {
				x.stop(err)
				break
			}
			x.fail(src, err)
			continue
		}
		if len(x.result.Failed) == failed && (len(x.result.Skipped) == skipped || x.result.Skipped[skipped] != src) {
			x.succeed(src)
		}
	}
	return rec
}

// copyEntry copies one node, consulting the resolver when dst is taken.
// Every path it creates is appended to rec in creation order.
func (x *execution) copyEntry(ctx context.Context, rec *DeleteCreated, src, dst string) error {
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
			// Directories merge
			x.entryDone()
			return x.copyChildren(ctx, rec, src, dst)
		}
		d, err := x.resolve(ctx, src, dst)
		if err != nil {
			return err
		}
		switch d.Action {
		case conflict.Skip:
			x.skip(src)
			x.entryDone()
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

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		if err := copyLink(src, dst); err != nil {
			return err
		}
		rec.Created = append(rec.Created, dst)
		x.entryDone()
		return nil

	case info.IsDir():
		if err := os.Mkdir(dst, 0700); err != nil {
			return errors.Classify("cannot create directory", dst, err)
		}
		rec.Created = append(rec.Created, dst)
		x.entryDone()
		err := x.copyChildren(ctx, rec, src, dst)
		finishDir(dst, info)
		return err

	case info.Mode().IsRegular():
		if err := x.engine.copyFile(ctx, src, dst, info, x.addBytes); err != nil {
			return err
		}
		rec.Created = append(rec.Created, dst)
		x.entryDone()
		return nil
	}
	return errors.NewFileError("unsupported file type", src, errors.InvalidOperation, nil)
}

func (x *execution) copyChildren(ctx context.Context, rec *DeleteCreated, srcDir, dstDir string) error {
	children, err := os.ReadDir(srcDir)
	if err != nil {
		return errors.Classify("cannot read directory", srcDir, err)
	}
	for _, c := range children {
		src := filepath.Join(srcDir, c.Name())
		if err := x.copyEntry(ctx, rec, src, filepath.Join(dstDir, c.Name())); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			x.fail(src, err)
		}
	}
	return nil
}

// resolve asks the operation's resolver about src colliding with dst
func (x *execution) resolve(ctx context.Context, src, dst string) (conflict.Decision, error) {
	srcEntry, err := fsys.Entry(src)
	if err != nil {
		return conflict.Decision{}, err
	}
	dstEntry, err := fsys.Entry(dst)
	if err != nil {
		return conflict.Decision{}, err
	}
	d, err := x.resolver.Resolve(ctx, srcEntry, dstEntry)
	if err != nil {
		return conflict.Decision{}, err
	}
	if d.Action == conflict.Abort {
		return d, errors.NewFileError("aborted at conflict", dst, errors.Cancelled, nil)
	}
	x.logger.Debugf("conflict at %s resolved as %s", dst, d.Action)
	return d, nil
}

// displace clears dst for an overwrite, keeping it in the holding area
// when overwritten entries are backed up
func (x *execution) displace(ctx context.Context, dst string, replaced *[]Held) error {
	if x.engine.backupOverwritten {
		item, err := x.engine.hold(ctx, dst)
		if sourceRemains(err) {
			*replaced = append(*replaced, item)
			return errors.Wrapf(err, "cannot clear %s, complete backup kept at %s", dst, item.Location)
		}
		if err != nil {
			return err
		}
		*replaced = append(*replaced, item)
		return nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return errors.Classify("cannot remove overwritten entry", dst, err)
	}
	return nil
}

// copyTree copies src to dst, which must not exist, with no conflict
// handling. Whatever the call created is removed again on failure.
func (e *Engine) copyTree(ctx context.Context, src, dst string, onBytes func(int64)) (err error) {
	if err := checkpoint(ctx, src); err != nil {
		return err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Classify("cannot read source", src, err)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copyLink(src, dst)

	case info.IsDir():
		if err := os.Mkdir(dst, 0700); err != nil {
			return errors.Classify("cannot create directory", dst, err)
		}
		defer func() {
			if err != nil {
				_ = os.RemoveAll(dst)
			}
		}()
		children, err := os.ReadDir(src)
		if err != nil {
			return errors.Classify("cannot read directory", src, err)
		}
		for _, c := range children {
			if err := e.copyTree(ctx, filepath.Join(src, c.Name()), filepath.Join(dst, c.Name()), onBytes); err != nil {
				return err
			}
		}
		finishDir(dst, info)
		return nil

	case info.Mode().IsRegular():
		return e.copyFile(ctx, src, dst, info, onBytes)
	}
	return errors.NewFileError("unsupported file type", src, errors.InvalidOperation, nil)
}

// copyFile streams src into a new file at dst in chunks, checking ctx
// between chunks. A failed or cancelled copy leaves no file at dst.
func (e *Engine) copyFile(ctx context.Context, src, dst string, info fs.FileInfo, onBytes func(int64)) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Classify("cannot open source", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()|0200)
	if err != nil {
		return errors.Classify("cannot create file", dst, err)
	}

	buf := make([]byte, e.bufferSize)
	_, err = io.CopyBuffer(writerOnly{out}, &chunkReader{ctx: ctx, r: in, path: src, onBytes: onBytes}, buf)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return errors.Classify("copy failed", dst, err)
	}

	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
	return nil
}

func copyLink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return errors.Classify("cannot read link", src, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return errors.Classify("cannot create link", dst, err)
	}
	return nil
}

// finishDir applies the source directory's permissions and times once
// its children are in place
func finishDir(dst string, info fs.FileInfo) {
	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
}

// chunkReader reports bytes as they are read and stops at the next
// chunk boundary once ctx is done
type chunkReader struct {
	ctx     context.Context
	r       io.Reader
	path    string
	onBytes func(int64)
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, errors.Classify("copy cancelled", c.path, err)
	}
	n, err := c.r.Read(p)
	if n > 0 && c.onBytes != nil {
		c.onBytes(int64(n))
	}
	if err != nil && err != io.EOF {
		return n, errors.Classify("cannot read source", c.path, err)
	}
	return n, err
}

// writerOnly hides ReadFrom so io.CopyBuffer uses our chunk size
type writerOnly struct {
	io.Writer
}
