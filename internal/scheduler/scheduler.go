// Package scheduler runs operations requested by either panel on a single
// background worker, in the order they were submitted.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"twinpane/internal/log"
	"twinpane/internal/operation"
	"twinpane/internal/undo"
	"twinpane/pkg/types"

	"github.com/google/uuid"
)

const (
	progressBuffer = 16
	resultBuffer   = 16
)

// Request is one operation submitted from a panel
type Request struct {
	ID    uuid.UUID
	Panel types.PanelID
	Op    operation.Operation
}

// Completion reports a finished job. For undo jobs Undo is set, Undone
// holds the record that was applied and Err any failure applying it.
type Completion struct {
	ID     uuid.UUID
	Panel  types.PanelID
	Result operation.Result
	Undo   bool
	Undone operation.Record
	Err    error
}

type job struct {
	req       Request
	undo      bool
	cancelled bool
}

// Scheduler queues requests and executes them one at a time. Records of
// completed operations are pushed to the undo stack in completion order,
// and undo requests go through the same queue so they never race a
// running operation.
type Scheduler struct {
	exec  operation.Executor
	stack *undo.Stack

	mu      sync.Mutex
	queue   []*job
	current *job
	cancel  context.CancelFunc
	running bool

	wake     chan struct{}
	progress chan operation.Progress
	results  chan Completion
	stop     context.CancelFunc
	done     chan struct{}
}

// New creates a Scheduler. Call Start before submitting work.
func New(exec operation.Executor, stack *undo.Stack) *Scheduler {
	return &Scheduler{
		exec:     exec,
		stack:    stack,
		wake:     make(chan struct{}, 1),
		progress: make(chan operation.Progress, progressBuffer),
		results:  make(chan Completion, resultBuffer),
	}
}

// Progress delivers progress snapshots. Snapshots are dropped rather
// than slowing the worker when nobody keeps up.
func (s *Scheduler) Progress() <-chan operation.Progress {
	return s.progress
}

// Results delivers one Completion per submitted job
func (s *Scheduler) Results() <-chan Completion {
	return s.results
}

// Stack returns the undo stack the scheduler pushes to
func (s *Scheduler) Stack() *undo.Stack {
	return s.stack
}

// Start launches the worker
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	ctx, stop := context.WithCancel(ctx)
	s.stop = stop
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the running job, abandons the queue and waits for the
// worker to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	stop()
	<-done
}

// Submit queues op on behalf of panel and returns the job ID
func (s *Scheduler) Submit(panel types.PanelID, op operation.Operation) uuid.UUID {
	id := uuid.New()
	s.enqueue(&job{req: Request{ID: id, Panel: panel, Op: op}})
	log.LogWithFields(log.F("operation", id.String()), log.F("panel", panel.String())).Debug("queued ", op.Describe())
	return id
}

// SubmitUndo queues an undo of the most recent operation. It runs after
// everything already queued, so it undoes what is newest at that point.
func (s *Scheduler) SubmitUndo(panel types.PanelID) uuid.UUID {
	id := uuid.New()
	s.enqueue(&job{req: Request{ID: id, Panel: panel}, undo: true})
	return id
}

func (s *Scheduler) enqueue(j *job) {
	s.mu.Lock()
	s.queue = append(s.queue, j)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Cancel stops the job with the given ID. A running job stops at its next
// checkpoint; a queued job is reported as cancelled without running.
// It returns false when no such job is pending.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.req.ID == id {
		s.cancel()
		return true
	}
	for _, j := range s.queue {
		if j.req.ID == id && !j.cancelled {
			j.cancelled = true
			return true
		}
	}
	return false
}

// Current returns the ID of the running job
func (s *Scheduler) Current() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return uuid.Nil, false
	}
	return s.current.req.ID, true
}

// Queued returns the number of jobs waiting behind the running one
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	log.Debug("scheduler started")

	for {
		j, ok := s.next(ctx)
		if !ok {
			log.Debug("scheduler stopped")
			return
		}

		c := s.run(ctx, j)

		select {
		case s.results <- c:
		case <-ctx.Done():
			return
		}
	}
}

// next blocks until a job is queued or ctx is done
func (s *Scheduler) next(ctx context.Context) (*job, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			j := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return j, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (s *Scheduler) run(ctx context.Context, j *job) Completion {
	c := Completion{ID: j.req.ID, Panel: j.req.Panel, Undo: j.undo}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if j.cancelled {
		s.mu.Unlock()
		c.Result = operation.Result{ID: j.req.ID, Cancelled: true}
		if j.req.Op != nil {
			c.Result.Kind = j.req.Op.Kind()
		}
		return c
	}
	s.current, s.cancel = j, cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.current, s.cancel = nil, nil
		s.mu.Unlock()
	}()

	if j.undo {
		c.Undone, c.Err = s.stack.UndoLast(jobCtx)
		return c
	}

	c.Result = s.exec.Execute(jobCtx, j.req.ID, j.req.Op, s.publish)
	// Partial and cancelled runs still record what they did
	s.stack.Push(c.Result.Record)
	return c
}

// publish never blocks the engine. When the buffer is full the oldest
// frame makes room for the newest.
func (s *Scheduler) publish(p operation.Progress) {
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case s.progress <- p:
			return
		default:
		}
		select {
		case <-s.progress:
		default:
		}
	}
}
