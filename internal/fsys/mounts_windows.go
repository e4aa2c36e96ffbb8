//go:build windows

package fsys

import "os"

// Mounts lists the drive letters that currently resolve.
func Mounts() ([]Mount, error) {
	var mounts []Mount
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if _, err := os.Stat(root); err == nil {
			mounts = append(mounts, Mount{Path: root, Device: string(c) + ":"})
		}
	}
	return mounts, nil
}
