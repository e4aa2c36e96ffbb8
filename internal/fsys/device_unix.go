//go:build !windows

package fsys

import (
	"errors"
	"os"
	"syscall"
)

// SameVolume reports whether a and b live on the same filesystem, which
// is when a rename between them can succeed. Paths that cannot be
// inspected report false so callers take the copy path.
func SameVolume(a, b string) bool {
	da, ok := device(a)
	if !ok {
		return false
	}
	db, ok := device(b)
	if !ok {
		return false
	}
	return da == db
}

func device(path string) (uint64, bool) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, false
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}

// IsCrossDevice reports whether err is a rename failing because source
// and target are on different filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
