// Package fsutil provides the bounded filesystem primitives the crash
// importers are built on: a capped, recency-ranked directory scanner and a
// line/byte-capped file reader. Both treat unreadable input as an expected
// gap rather than an error.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

type foundFile struct {
	path    string
	modTime time.Time
}

// ScanNewest walks the given roots and returns up to cap matching file
// paths, most recently modified first. Traversal is depth-first over an
// explicit stack so arbitrarily deep trees cannot overflow the call stack,
// and symlinks are never followed as directories, which also breaks cycles
// through symlinked subtrees. Unreadable entries are skipped.
func ScanNewest(roots []string, match func(name string) bool, cap int) []string {
	if cap <= 0 {
		return nil
	}

	stack := make([]string, 0, len(roots))
	stack = append(stack, roots...)

	var found []foundFile
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Lstat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				stack = append(stack, filepath.Join(path, entry.Name()))
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if match != nil && !match(info.Name()) {
			continue
		}
		found = append(found, foundFile{path: path, modTime: info.ModTime()})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})
	if len(found) > cap {
		found = found[:cap]
	}

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths
}

// ModTime returns the file's modification time, or the zero time when the
// file cannot be stat'ed.
func ModTime(path string) time.Time {
	info, err := os.Lstat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
