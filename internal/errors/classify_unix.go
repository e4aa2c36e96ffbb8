//go:build !windows

package errors

import (
	"errors"
	"syscall"
)

func platformKind(err error) ErrorKind {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Unknown
	}
	switch errno {
	case syscall.ENOSPC, syscall.EDQUOT:
		return DiskFull
	case syscall.ENOTDIR:
		return NotADirectory
	case syscall.EROFS, syscall.EIO, syscall.ENODEV, syscall.ENXIO, syscall.ESTALE, syscall.ENOTCONN:
		return DestinationUnreachable
	case syscall.ENOTEMPTY, syscall.EINVAL, syscall.EISDIR, syscall.ELOOP:
		return InvalidOperation
	case syscall.ENAMETOOLONG:
		return InvalidPath
	}
	return Unknown
}
