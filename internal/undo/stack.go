// Package undo keeps the inverse records of completed operations and
// applies them newest first.
package undo

import (
	"context"
	"sync"

	"twinpane/internal/errors"
	"twinpane/internal/log"
	"twinpane/internal/operation"
)

// DefaultLimit is the number of records kept when no limit is configured
const DefaultLimit = 20

// Applier reverses and releases records
type Applier interface {
	Undo(ctx context.Context, rec operation.Record) error
	Discard(rec operation.Record)
}

// Stack is a bounded undo history. The oldest record is dropped, and its
// held content released, once the limit is exceeded.
type Stack struct {
	mu      sync.Mutex
	records []operation.Record
	limit   int
	applier Applier
}

// New creates a Stack holding at most limit records
func New(applier Applier, limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{applier: applier, limit: limit}
}

// Push appends rec. Nil records are ignored.
func (s *Stack) Push(rec operation.Record) {
	if rec == nil {
		return
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	var evicted []operation.Record
	if over := len(s.records) - s.limit; over > 0 {
		evicted = append(evicted, s.records[:over]...)
		s.records = append([]operation.Record(nil), s.records[over:]...)
	}
	s.mu.Unlock()

	for _, old := range evicted {
		log.Debugf("undo history full, dropping %q", old.Describe())
		s.applier.Discard(old)
	}
}

// Len returns the number of records
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Peek returns the record UndoLast would apply
func (s *Stack) Peek() (operation.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil, false
	}
	return s.records[len(s.records)-1], true
}

// History returns record descriptions, newest first
func (s *Stack) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i].Describe())
	}
	return out
}

// UndoLast pops the newest record and applies it. The record stays popped
// even when applying it fails. An empty stack reports ErrNothingToUndo and
// changes nothing.
func (s *Stack) UndoLast(ctx context.Context) (operation.Record, error) {
	s.mu.Lock()
	if len(s.records) == 0 {
		s.mu.Unlock()
		return nil, errors.ErrNothingToUndo
	}
	rec := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	s.mu.Unlock()

	if err := s.applier.Undo(ctx, rec); err != nil {
		// Held content that could not be restored stays in the holding area
		log.LogWithError(err).Warn("undo failed: ", rec.Describe())
		return rec, err
	}
	return rec, nil
}

// Clear drops every record, releasing held content
func (s *Stack) Clear() {
	s.mu.Lock()
	records := s.records
	s.records = nil
	s.mu.Unlock()

	for _, rec := range records {
		s.applier.Discard(rec)
	}
}
