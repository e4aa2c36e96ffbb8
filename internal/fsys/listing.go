// Package fsys reads directories into immutable snapshots and answers the
// platform questions file operations need: hidden attributes, volume
// identity and mounted drives.
package fsys

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"twinpane/internal/errors"
	"twinpane/pkg/types"

	"golang.org/x/text/unicode/norm"
)

// ReadSnapshot lists dir into a new DirectorySnapshot. Entries keep the
// order the OS returned them in; panels do their own sorting.
func ReadSnapshot(dir string) (*types.DirectorySnapshot, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("invalid directory path", dir, errors.InvalidPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Classify("cannot open directory", abs, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", abs, errors.NotADirectory, nil)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Classify("cannot read directory", abs, err)
	}

	snap := &types.DirectorySnapshot{
		Path:       abs,
		Entries:    make([]types.FileEntry, 0, len(dirEntries)),
		CapturedAt: time.Now(),
	}
	for _, d := range dirEntries {
		fi, err := d.Info()
		if err != nil {
			// Removed between readdir and lstat
			continue
		}
		snap.Entries = append(snap.Entries, entryFromInfo(filepath.Join(abs, d.Name()), fi))
	}
	return snap, nil
}

// Entry stats a single path without following a final symlink.
func Entry(path string) (types.FileEntry, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return types.FileEntry{}, errors.Classify("cannot stat", path, err)
	}
	return entryFromInfo(path, fi), nil
}

func entryFromInfo(path string, fi fs.FileInfo) types.FileEntry {
	name := fi.Name()
	e := types.FileEntry{
		Path:       path,
		Name:       norm.NFC.String(name),
		Kind:       types.KindFile,
		Size:       fi.Size(),
		ModifiedAt: fi.ModTime(),
		Mode:       fi.Mode(),
		IsHidden:   IsHidden(path, name),
	}

	switch {
	case fi.Mode()&fs.ModeSymlink != 0:
		e.Kind = types.KindSymlink
		if target, err := os.Stat(path); err == nil && target.IsDir() {
			e.TargetIsDir = true
		}
	case fi.IsDir():
		e.Kind = types.KindDirectory
		e.Size = 0
	}
	return e
}
