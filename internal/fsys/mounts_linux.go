//go:build linux

package fsys

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Mounts lists the root filesystem and removable or user mounts from
// /proc/mounts. Pseudo filesystems are left out.
func Mounts() ([]Mount, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return []Mount{{Path: "/"}}, nil
	}
	defer f.Close()
	return parseMounts(bufio.NewScanner(f)), nil
}

func parseMounts(sc *bufio.Scanner) []Mount {
	seen := map[string]bool{}
	var mounts []Mount
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mp := unescapeMount(fields[1])
		if !userVisibleMount(mp) || seen[mp] {
			continue
		}
		seen[mp] = true
		mounts = append(mounts, Mount{Path: mp, Device: fields[0], FSType: fields[2]})
	}
	if !seen["/"] {
		mounts = append([]Mount{{Path: "/"}}, mounts...)
	}
	return mounts
}

func userVisibleMount(mp string) bool {
	if mp == "/" {
		return true
	}
	for _, prefix := range []string{"/media/", "/mnt/", "/run/media/", "/home"} {
		if strings.HasPrefix(mp, prefix) {
			return true
		}
	}
	return false
}

// unescapeMount decodes the octal escapes /proc/mounts uses for spaces and tabs
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
