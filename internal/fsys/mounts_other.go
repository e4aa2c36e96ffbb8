//go:build !linux && !windows

package fsys

import (
	"os"
	"path/filepath"
)

// Mounts lists the root filesystem plus anything under /Volumes.
func Mounts() ([]Mount, error) {
	mounts := []Mount{{Path: "/"}}
	entries, err := os.ReadDir("/Volumes")
	if err != nil {
		return mounts, nil
	}
	for _, e := range entries {
		mounts = append(mounts, Mount{Path: filepath.Join("/Volumes", e.Name())})
	}
	return mounts, nil
}
