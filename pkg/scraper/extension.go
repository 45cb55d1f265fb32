package scraper

import (
	"path/filepath"
	"strings"
)

const separators = "/" + string(filepath.Separator)

// baseName returns the last normal component of path. Trailing separators
// and "." components are skipped; a path ending in ".." or made only of
// separators has no base name.
func baseName(path string) (string, bool) {
	for {
		path = strings.TrimRight(path, separators)
		if path == "" {
			return "", false
		}

		idx := strings.LastIndexAny(path, separators)
		name := path[idx+1:]

		switch {
		case name == "..":
			return "", false
		case name == "." && idx < 0:
			return "", false
		case name == ".":
			path = path[:idx+1]
		default:
			return name, true
		}
	}
}

// GetExtension returns the text after the last dot of the file name of path.
//
// A name without a dot, or whose only dot is the leading one (".dat"), has no
// extension. A trailing dot ("a.") gives the empty extension. Only the last
// path component is considered, so "dir.d/file" has no extension.
func GetExtension(path string) (string, bool) {
	name, ok := baseName(path)
	if !ok {
		return "", false
	}

	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return "", false
	}

	return name[idx+1:], true
}
