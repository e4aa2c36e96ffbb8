package operation

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"twinpane/internal/conflict"
	"twinpane/internal/errors"
	"twinpane/internal/fsys"
	"twinpane/internal/log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultBufferSize is the copy chunk size. Cancellation is checked
// between chunks.
const DefaultBufferSize = 256 * 1024

// measureWorkers bounds the goroutines sizing sources before a batch
const measureWorkers = 4

// Filesystem calls on the relocate path, replaceable in tests to reproduce
// cross-device moves and removals that fail halfway.
var (
	renameEntry = os.Rename
	removeAll   = os.RemoveAll
)

// Engine executes operations. It holds no per-operation state, but it is
// meant to be driven by a single worker so two operations never write to
// the same tree at once.
type Engine struct {
	holding           *Holding
	recoverableDelete bool
	backupOverwritten bool
	bufferSize        int
	policy            conflict.Policy
	asker             conflict.Asker
}

// Option configures an Engine
type Option func(*Engine)

// WithHolding sets the holding area used for recoverable deletes and
// overwritten destinations
func WithHolding(h *Holding) Option {
	return func(e *Engine) { e.holding = h }
}

// WithRecoverableDelete parks deleted entries in the holding area instead
// of removing them
func WithRecoverableDelete(on bool) Option {
	return func(e *Engine) { e.recoverableDelete = on }
}

// WithBackupOverwritten parks entries replaced by an overwrite in the
// holding area so undo can bring them back
func WithBackupOverwritten(on bool) Option {
	return func(e *Engine) { e.backupOverwritten = on }
}

// WithBufferSize sets the copy chunk size
func WithBufferSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bufferSize = n
		}
	}
}

// WithConflictPolicy sets the standing collision policy each operation starts with
func WithConflictPolicy(p conflict.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithAsker sets who answers collisions under AlwaysAsk
func WithAsker(a conflict.Asker) Option {
	return func(e *Engine) { e.asker = a }
}

// New creates an Engine. Deletes are permanent unless WithRecoverableDelete
// is given.
func New(opts ...Option) *Engine {
	e := &Engine{
		bufferSize: DefaultBufferSize,
		policy:     conflict.AlwaysAsk,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.holding == nil {
		e.holding = NewHolding(filepath.Join(os.TempDir(), "twinpane-holding"))
	}
	return e
}

// Holding returns the engine's holding area
func (e *Engine) Holding() *Holding {
	return e.holding
}

// Run executes op under a fresh operation ID
func (e *Engine) Run(ctx context.Context, op Operation, progress ProgressFunc) Result {
	return e.Execute(ctx, uuid.New(), op, progress)
}

// Execute runs op to completion, failure or cancellation. It never
// panics on filesystem races; entries that disappear mid-batch are
// reported as failures.
func (e *Engine) Execute(ctx context.Context, id uuid.UUID, op Operation, progress ProgressFunc) Result {
	x := &execution{
		engine:   e,
		resolver: conflict.NewResolver(e.policy, e.asker),
		notify:   progress,
		stats:    make(map[string]treeStats),
		logger:   log.LogWithFields(log.F("operation", id.String()), log.F("kind", op.Kind().String())),
		result:   Result{ID: id, Kind: op.Kind()},
		prog:     Progress{OperationID: id, Kind: op.Kind()},
	}

	x.logger.Info("starting ", op.Describe())
	x.measure(ctx, op)
	x.emit()

	rec := op.execute(ctx, x)
	if rec != nil && !rec.empty() {
		x.result.Record = rec
	}
	if errors.IsCancelled(x.result.Fatal) {
		x.result.Cancelled = true
		x.result.Fatal = nil
	}
	x.result.Bytes = x.prog.BytesDone
	x.prog.CurrentPath = ""
	x.emit()

	for _, f := range x.result.Failed {
		x.logger.WithError(f.Err).Warn("entry failed")
	}
	if x.result.Fatal != nil {
		x.logger.WithError(x.result.Fatal).Error("operation stopped")
	}
	x.logger.Info(x.result.Summary())
	return x.result
}

// Undo reverses rec. Failures carry the same error kinds as forward
// operations.
func (e *Engine) Undo(ctx context.Context, rec Record) error {
	log.LogWithFields(log.F("undo", rec.Kind().String())).Info(rec.Describe())
	return rec.revert(ctx, e)
}

// Discard releases whatever rec keeps in the holding area
func (e *Engine) Discard(rec Record) {
	rec.release(e)
}

type treeStats struct {
	entries int
	bytes   int64
}

// execution is the state of one running operation
type execution struct {
	engine   *Engine
	resolver *conflict.Resolver
	notify   ProgressFunc
	logger   *log.Logger

	mu    sync.Mutex
	stats map[string]treeStats

	prog   Progress
	result Result
}

// measure sizes the sources so progress has totals. Errors are ignored:
// a missing source shows up again, properly reported, when it is processed.
func (x *execution) measure(ctx context.Context, op Operation) {
	paths := op.Paths()
	if len(paths) == 0 {
		x.prog.TotalEntries = 1
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(measureWorkers)
	for _, p := range paths {
		if abs, err := absolute(p); err == nil {
			p = abs
		}
		p := p
		g.Go(func() error {
			st := measureTree(gctx, p)
			x.mu.Lock()
			x.stats[p] = st
			x.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, st := range x.stats {
		x.prog.TotalEntries += st.entries
		x.prog.TotalBytes += st.bytes
	}
}

func measureTree(ctx context.Context, root string) treeStats {
	var st treeStats
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		st.entries++
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				st.bytes += info.Size()
			}
		}
		return nil
	})
	return st
}

func (x *execution) emit() {
	if x.notify != nil {
		x.notify(x.prog)
	}
}

func (x *execution) current(path string) {
	x.prog.CurrentPath = path
	x.emit()
}

// entryDone counts one processed node
func (x *execution) entryDone() {
	x.prog.EntriesDone++
	x.emit()
}

func (x *execution) addBytes(n int64) {
	x.prog.BytesDone += n
	x.emit()
}

// settle credits a whole top-level source once it is done, for
// operations that do not walk it node by node
func (x *execution) settle(path string, before Progress) {
	st := x.stats[path]
	x.prog.EntriesDone = before.EntriesDone + st.entries
	x.prog.BytesDone = before.BytesDone + st.bytes
	x.emit()
}

func (x *execution) succeed(path string) {
	x.result.Succeeded = append(x.result.Succeeded, path)
}

func (x *execution) skip(path string) {
	x.logger.Debugf("skipped %s", path)
	x.result.Skipped = append(x.result.Skipped, path)
}

func (x *execution) fail(path string, err error) {
	x.result.Failed = append(x.result.Failed, Failure{Path: path, Err: err})
}

// stop ends the batch. Anything queued after this point is abandoned.
func (x *execution) stop(err error) {
	x.result.Fatal = err
}

// checkpoint returns a Cancelled error once ctx is done
func checkpoint(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return errors.Classify("operation cancelled", path, err)
	}
	return nil
}

// destination checks that dir can receive entries. Failures here are
// fatal to the whole batch.
func destination(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("destination does not exist", dir, errors.DestinationUnreachable, err)
		}
		return errors.Classify("cannot reach destination", dir, err)
	}
	if !info.IsDir() {
		return errors.NewFileError("destination is not a directory", dir, errors.NotADirectory, nil)
	}
	return nil
}

// absolute anchors path at the working directory so that containment
// checks and records do not depend on how the caller spelled it
func absolute(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path), errors.Classify("cannot resolve path", path, err)
	}
	return abs, nil
}

// within reports whether path is root or lies below it
func within(path, root string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// relocate moves src to dst, which must not exist. Same-volume moves are
// a single rename; otherwise the tree is copied and the source removed.
func (e *Engine) relocate(ctx context.Context, src, dst string, onBytes func(int64)) error {
	if err := renameEntry(src, dst); err == nil {
		return nil
	} else if !fsys.IsCrossDevice(err) && fsys.SameVolume(src, filepath.Dir(dst)) {
		return errors.Classify("cannot move", src, err)
	}

	if err := e.copyTree(ctx, src, dst, onBytes); err != nil {
		return err
	}
	if err := removeAll(src); err != nil {
		return &sourceRemainsError{err: errors.Classify("copied but cannot remove source", src, err)}
	}
	return nil
}

// sourceRemainsError reports a relocate whose copy is complete at the
// destination while part of the source could not be removed
type sourceRemainsError struct {
	err error
}

func (e *sourceRemainsError) Error() string { return e.err.Error() }

func (e *sourceRemainsError) Unwrap() error { return e.err }

func sourceRemains(err error) bool {
	var sr *sourceRemainsError
	return errors.As(err, &sr)
}

// hold moves path into a fresh holding slot
func (e *Engine) hold(ctx context.Context, path string) (Held, error) {
	item, err := e.holding.slot(path)
	if err != nil {
		return Held{}, err
	}
	if err := e.relocate(ctx, path, item.Location, nil); err != nil {
		if sourceRemains(err) {
			// the slot holds the only complete copy
			item.Partial = true
			return item, err
		}
		_ = e.holding.Release(item)
		return Held{}, err
	}
	return item, nil
}

// restore puts a held entry back where it came from
func (e *Engine) restore(ctx context.Context, item Held) error {
	if !e.holding.Exists(item) {
		return errors.NewFileError("held copy is gone", item.Original, errors.UndoUnavailable, nil)
	}
	if item.Partial {
		if err := mergeBack(ctx, e, item.Location, item.Original); err != nil {
			return err
		}
		return e.holding.Release(item)
	}
	if _, err := os.Lstat(item.Original); err == nil {
		return errors.NewFileError("original location is occupied", item.Original, errors.NameConflict, nil)
	}
	if err := os.MkdirAll(filepath.Dir(item.Original), 0755); err != nil {
		return errors.Classify("cannot recreate parent", filepath.Dir(item.Original), err)
	}
	if err := e.relocate(ctx, item.Location, item.Original, nil); err != nil {
		return err
	}
	return e.holding.Release(item)
}
