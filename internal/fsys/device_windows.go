//go:build windows

package fsys

import (
	"errors"
	"path/filepath"
	"strings"
	"syscall"
)

// SameVolume reports whether a and b share a volume name.
func SameVolume(a, b string) bool {
	va := filepath.VolumeName(a)
	vb := filepath.VolumeName(b)
	return va != "" && strings.EqualFold(va, vb)
}

// ERROR_NOT_SAME_DEVICE
const errNotSameDevice = syscall.Errno(17)

// IsCrossDevice reports whether err is a rename failing because source
// and target are on different volumes.
func IsCrossDevice(err error) bool {
	return errors.Is(err, errNotSameDevice)
}
