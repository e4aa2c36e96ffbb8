package types

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// EntryKind classifies a filesystem node
type EntryKind int

const (
	// KindFile is a regular file (or anything that is not a directory or symlink)
	KindFile EntryKind = iota
	// KindDirectory is a directory
	KindDirectory
	// KindSymlink is a symbolic link; the link itself, never its target
	KindSymlink
)

// String returns a short label for the kind
func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// FileEntry represents one node of a directory listing.
// Entries are produced by a listing and never modified afterwards.
type FileEntry struct {
	Path       string      `json:"path"`
	Name       string      `json:"name"`
	Kind       EntryKind   `json:"kind"`
	Size       int64       `json:"size"`
	ModifiedAt time.Time   `json:"modified_at"`
	Mode       fs.FileMode `json:"mode"`
	IsHidden   bool        `json:"hidden"`
	// TargetIsDir is set for symlinks that resolve to a directory
	TargetIsDir bool `json:"target_is_dir,omitempty"`
}

// IsDir reports whether the entry is a directory
func (f FileEntry) IsDir() bool {
	return f.Kind == KindDirectory
}

// IsSymlink reports whether the entry is a symbolic link
func (f FileEntry) IsSymlink() bool {
	return f.Kind == KindSymlink
}

// IsDirLike reports whether the entry can be entered like a directory.
// Symlinks pointing at directories count.
func (f FileEntry) IsDirLike() bool {
	return f.Kind == KindDirectory || (f.Kind == KindSymlink && f.TargetIsDir)
}

// Ext returns the lowercase extension without the leading dot
func (f FileEntry) Ext() string {
	if f.IsDir() {
		return ""
	}
	ext := filepath.Ext(f.Name)
	if ext == "" || ext == f.Name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// String returns a human-readable representation
func (f FileEntry) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Path: %s\n", f.Path))
	sb.WriteString(fmt.Sprintf("Kind: %s\n", f.Kind))
	sb.WriteString(fmt.Sprintf("Size: %d bytes\n", f.Size))
	sb.WriteString(fmt.Sprintf("Modified: %s\n", f.ModifiedAt.Format("2006-01-02 15:04")))
	return sb.String()
}

// DirectorySnapshot is an ordered listing of one directory captured at a
// point in time. A refresh produces a new snapshot instead of mutating one.
type DirectorySnapshot struct {
	Path       string
	Entries    []FileEntry
	CapturedAt time.Time
}

// Len returns the number of entries in the snapshot
func (s *DirectorySnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Lookup finds an entry by absolute path
func (s *DirectorySnapshot) Lookup(path string) (FileEntry, bool) {
	if s == nil {
		return FileEntry{}, false
	}
	for _, e := range s.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return FileEntry{}, false
}
