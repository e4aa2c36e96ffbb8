// Package operation executes file operations requested from a panel and
// records how to reverse them.
//
// Every Operation variant maps to exactly one Record variant through its
// execute method, so adding an operation without an undo record does not
// compile.
package operation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Kind names an operation variant
type Kind int

const (
	KindCopy Kind = iota
	KindMove
	KindDelete
	KindRename
	KindMakeDir
)

// String returns the verb for the kind
func (k Kind) String() string {
	switch k {
	case KindCopy:
		return "copy"
	case KindMove:
		return "move"
	case KindDelete:
		return "delete"
	case KindRename:
		return "rename"
	case KindMakeDir:
		return "mkdir"
	}
	return "unknown"
}

// Operation is one requested mutation. It is built once per command and
// never changed afterwards.
type Operation interface {
	Kind() Kind
	// Paths returns the entries the operation reads or removes
	Paths() []string
	Describe() string
	execute(ctx context.Context, x *execution) Record
}

// Copy copies Sources into DestDir
type Copy struct {
	Sources []string
	DestDir string
}

func (Copy) Kind() Kind        { return KindCopy }
func (o Copy) Paths() []string { return o.Sources }
func (o Copy) Describe() string {
	return fmt.Sprintf("copy %s to %s", countNoun(o.Sources), o.DestDir)
}

// Move moves Sources into DestDir
type Move struct {
	Sources []string
	DestDir string
}

func (Move) Kind() Kind        { return KindMove }
func (o Move) Paths() []string { return o.Sources }
func (o Move) Describe() string {
	return fmt.Sprintf("move %s to %s", countNoun(o.Sources), o.DestDir)
}

// Delete removes Targets
type Delete struct {
	Targets []string
}

func (Delete) Kind() Kind        { return KindDelete }
func (o Delete) Paths() []string { return o.Targets }
func (o Delete) Describe() string {
	return "delete " + countNoun(o.Targets)
}

// Rename renames Source within its directory
type Rename struct {
	Source  string
	NewName string
}

func (Rename) Kind() Kind        { return KindRename }
func (o Rename) Paths() []string { return []string{o.Source} }
func (o Rename) Describe() string {
	return fmt.Sprintf("rename %s to %s", filepath.Base(o.Source), o.NewName)
}

// MakeDir creates Name inside Parent
type MakeDir struct {
	Parent string
	Name   string
}

func (MakeDir) Kind() Kind      { return KindMakeDir }
func (MakeDir) Paths() []string { return nil }
func (o MakeDir) Describe() string {
	return "create directory " + filepath.Join(o.Parent, o.Name)
}

func countNoun(paths []string) string {
	if len(paths) == 1 {
		return filepath.Base(paths[0])
	}
	return fmt.Sprintf("%d entries", len(paths))
}

// Progress is a snapshot of a running operation
type Progress struct {
	OperationID  uuid.UUID
	Kind         Kind
	EntriesDone  int
	TotalEntries int
	BytesDone    int64
	TotalBytes   int64
	CurrentPath  string
}

// Fraction returns completion in [0,1], by bytes when sizes are known
func (p Progress) Fraction() float64 {
	switch {
	case p.TotalBytes > 0:
		return clamp(float64(p.BytesDone) / float64(p.TotalBytes))
	case p.TotalEntries > 0:
		return clamp(float64(p.EntriesDone) / float64(p.TotalEntries))
	}
	return 0
}

func clamp(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}

// ProgressFunc receives progress snapshots. It is called on the engine's
// goroutine and must not block.
type ProgressFunc func(Progress)

// Failure is one entry that could not be processed
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of one operation. Entries already completed when
// a failure or cancellation stopped the batch stay completed.
type Result struct {
	ID        uuid.UUID
	Kind      Kind
	Succeeded []string
	Skipped   []string
	Failed    []Failure
	Cancelled bool
	// Fatal is set when the batch stopped early for a reason other than
	// cancellation, such as an unreachable destination or a full disk.
	Fatal  error
	Record Record
	Bytes  int64
}

// OK reports whether everything requested succeeded
func (r Result) OK() bool {
	return !r.Cancelled && r.Fatal == nil && len(r.Failed) == 0
}

// Summary renders the result on one line
func (r Result) Summary() string {
	var parts []string
	verb := r.Kind.String()
	parts = append(parts, fmt.Sprintf("%s: %d done", verb, len(r.Succeeded)))
	if r.Bytes > 0 {
		parts = append(parts, humanize.Bytes(uint64(r.Bytes)))
	}
	if n := len(r.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if n := len(r.Failed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if r.Cancelled {
		parts = append(parts, "cancelled")
	}
	if r.Fatal != nil {
		parts = append(parts, "stopped: "+r.Fatal.Error())
	}
	return strings.Join(parts, ", ")
}
