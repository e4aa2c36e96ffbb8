package operation

import (
	"os"
	"path/filepath"

	"twinpane/internal/errors"

	"github.com/google/uuid"
)

// Held is one entry parked in the holding area
type Held struct {
	ID       uuid.UUID
	Original string
	Location string
	// Partial is set when part of the original could not be removed, so
	// the original location still holds what the copy also has
	Partial bool
}

// Holding is a directory that keeps deleted and overwritten entries so
// they can be put back. Each entry gets its own slot, <root>/<id>/<name>,
// so entries with the same name never collide.
type Holding struct {
	root string
}

// NewHolding returns a holding area rooted at root. The directory is
// created on first use.
func NewHolding(root string) *Holding {
	return &Holding{root: root}
}

// Root returns the holding directory
func (h *Holding) Root() string {
	return h.root
}

// slot reserves a location for original
func (h *Holding) slot(original string) (Held, error) {
	id := uuid.New()
	dir := filepath.Join(h.root, id.String())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Held{}, errors.Classify("cannot create holding slot", dir, err)
	}
	return Held{
		ID:       id,
		Original: original,
		Location: filepath.Join(dir, filepath.Base(original)),
	}, nil
}

// Exists reports whether the held content is still present
func (h *Holding) Exists(item Held) bool {
	_, err := os.Lstat(item.Location)
	return err == nil
}

// Release discards a held entry
func (h *Holding) Release(item Held) error {
	dir := filepath.Join(h.root, item.ID.String())
	if err := os.RemoveAll(dir); err != nil {
		return errors.Classify("cannot release held entry", dir, err)
	}
	return nil
}

// Purge empties the holding area. Records that still point into it can
// no longer be undone.
func (h *Holding) Purge() error {
	entries, err := os.ReadDir(h.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Classify("cannot read holding area", h.root, err)
	}
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(h.root, e.Name())); err != nil {
			errs = append(errs, errors.Classify("cannot purge", filepath.Join(h.root, e.Name()), err))
		}
	}
	return errors.Join(errs...)
}
