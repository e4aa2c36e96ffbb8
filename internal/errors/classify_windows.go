//go:build windows

package errors

import (
	"errors"
	"syscall"
)

// Win32 error codes not exported by the syscall package
const (
	errorWriteProtect   syscall.Errno = 19
	errorNotReady       syscall.Errno = 21
	errorHandleDiskFull syscall.Errno = 39
	errorBadNetpath     syscall.Errno = 53
	errorDevNotExist    syscall.Errno = 55
	errorDiskFull       syscall.Errno = 112
	errorDirNotEmpty    syscall.Errno = 145
	errorDirectory      syscall.Errno = 267
	errorFilenameExced  syscall.Errno = 206
)

func platformKind(err error) ErrorKind {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Unknown
	}
	switch errno {
	case errorDiskFull, errorHandleDiskFull:
		return DiskFull
	case errorDirectory:
		return NotADirectory
	case errorWriteProtect, errorNotReady, errorBadNetpath, errorDevNotExist:
		return DestinationUnreachable
	case errorDirNotEmpty:
		return InvalidOperation
	case errorFilenameExced:
		return InvalidPath
	}
	return Unknown
}
