// Package conflict decides what happens when a copy or move finds its
// destination already occupied.
package conflict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"twinpane/internal/errors"
	"twinpane/pkg/types"
)

// Policy is the standing answer for collisions
type Policy int

const (
	AlwaysAsk Policy = iota
	AlwaysOverwrite
	AlwaysSkip
	AlwaysRename
)

// ParsePolicy maps a config collision value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "ask", "":
		return AlwaysAsk, nil
	case "overwrite":
		return AlwaysOverwrite, nil
	case "skip":
		return AlwaysSkip, nil
	case "rename":
		return AlwaysRename, nil
	}
	return AlwaysAsk, fmt.Errorf("unknown collision strategy: %s", s)
}

// String returns the config name of the policy
func (p Policy) String() string {
	switch p {
	case AlwaysOverwrite:
		return "overwrite"
	case AlwaysSkip:
		return "skip"
	case AlwaysRename:
		return "rename"
	default:
		return "ask"
	}
}

// Action is the outcome for one collision
type Action int

const (
	Overwrite Action = iota
	Skip
	Rename
	Abort
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case Overwrite:
		return "overwrite"
	case Skip:
		return "skip"
	case Rename:
		return "rename"
	default:
		return "abort"
	}
}

// Decision answers one collision. NewName is set for Rename. ApplyToAll
// turns the answer into the policy for the rest of the current operation.
type Decision struct {
	Action     Action
	NewName    string
	ApplyToAll bool
}

// Conflict describes one collision
type Conflict struct {
	Source        types.FileEntry
	Existing      types.FileEntry
	SuggestedName string
}

// Asker obtains a decision from the user. Implementations may block until
// the user answers or ctx is done.
type Asker interface {
	Ask(ctx context.Context, c Conflict) (Decision, error)
}

// AskerFunc adapts a function to Asker
type AskerFunc func(ctx context.Context, c Conflict) (Decision, error)

// Ask implements Asker
func (f AskerFunc) Ask(ctx context.Context, c Conflict) (Decision, error) {
	return f(ctx, c)
}

// Resolver applies a policy to collisions. A Resolver belongs to a single
// operation so an "apply to all" answer never leaks into the next one.
type Resolver struct {
	policy Policy
	asker  Asker
	exists func(path string) bool
}

// NewResolver creates a Resolver. asker may be nil when policy is not
// AlwaysAsk; a nil asker turns AlwaysAsk into Skip.
func NewResolver(policy Policy, asker Asker) *Resolver {
	return &Resolver{policy: policy, asker: asker, exists: pathExists}
}

// Policy returns the current policy, which changes after an apply-to-all answer
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve decides what to do about src colliding with existing. The
// returned Decision always carries a NewName when Action is Rename.
func (r *Resolver) Resolve(ctx context.Context, src, existing types.FileEntry) (Decision, error) {
	dir := filepath.Dir(existing.Path)
	suggested, err := SuggestName(dir, filepath.Base(existing.Path), r.exists)
	if err != nil {
		return Decision{}, err
	}
	c := Conflict{Source: src, Existing: existing, SuggestedName: suggested}

	if d, ok := Decide(r.policy, c); ok {
		return d, nil
	}

	if r.asker == nil {
		return Decision{Action: Skip}, nil
	}
	d, err := r.asker.Ask(ctx, c)
	if err != nil {
		return Decision{}, err
	}
	if d.Action == Rename {
		if d.NewName == "" {
			d.NewName = suggested
		} else if r.exists(filepath.Join(dir, d.NewName)) {
			return Decision{}, errors.NewFileError("name already taken", filepath.Join(dir, d.NewName), errors.NameConflict, nil)
		}
	}
	if d.ApplyToAll {
		switch d.Action {
		case Overwrite:
			r.policy = AlwaysOverwrite
		case Skip:
			r.policy = AlwaysSkip
		case Rename:
			r.policy = AlwaysRename
		}
	}
	return d, nil
}

// Decide is the pure part of resolution: it answers c from policy alone.
// It returns false when the user has to be asked.
func Decide(policy Policy, c Conflict) (Decision, bool) {
	switch policy {
	case AlwaysOverwrite:
		return Decision{Action: Overwrite}, true
	case AlwaysSkip:
		return Decision{Action: Skip}, true
	case AlwaysRename:
		return Decision{Action: Rename, NewName: c.SuggestedName}, true
	}
	return Decision{}, false
}

// maxSuffix bounds the search for a free name
const maxSuffix = 10000

// SuggestName finds a free name in dir by appending " (n)" before the
// extension: "report.pdf" becomes "report (1).pdf", then "report (2).pdf".
// Directories and dot files without an extension get the suffix at the end.
func SuggestName(dir, name string, exists func(string) bool) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		// ".bashrc" has no base, the whole name is the stem
		base, ext = name, ""
	}

	for n := 1; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !exists(filepath.Join(dir, candidate)) {
			return candidate, nil
		}
	}
	return "", errors.NewFileError(fmt.Sprintf("no free name after %d attempts", maxSuffix), filepath.Join(dir, name), errors.NameConflict, nil)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
