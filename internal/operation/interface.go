package operation

import (
	"context"

	"github.com/google/uuid"
)

// Executor defines the interface for running file operations.
// This allows for dependency injection in tests and other parts of the application
type Executor interface {
	// Execute runs op under the given ID, reporting progress as it goes
	Execute(ctx context.Context, id uuid.UUID, op Operation, progress ProgressFunc) Result

	// Run executes op under a fresh ID
	Run(ctx context.Context, op Operation, progress ProgressFunc) Result

	// Undo applies the inverse recorded for a completed operation
	Undo(ctx context.Context, rec Record) error

	// Discard releases what a record keeps in the holding area
	Discard(rec Record)
}

// Ensure Engine implements the Executor interface
var _ Executor = (*Engine)(nil)
