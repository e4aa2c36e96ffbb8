//go:build windows

package fsys

import "syscall"

const fileAttributeHidden = 0x02

// IsHidden checks if a file is hidden on this platform (Windows).
// Dot files count as hidden too, matching the convention of ported tools.
func IsHidden(fullPath string, name string) bool {
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	target := fullPath
	if target == "" {
		target = name
	}
	ptr, err := syscall.UTF16PtrFromString(target)
	if err != nil {
		return false
	}
	attrs, err := syscall.GetFileAttributes(ptr)
	if err != nil {
		return false
	}
	return attrs&fileAttributeHidden != 0
}
