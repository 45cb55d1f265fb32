package scraper

import (
	"os"
	"path/filepath"
	"strings"
)

// DatasetExtension is the extension of the files CollectFiles keeps.
const DatasetExtension = "dat"

// CollectFiles returns the paths of the entries directly inside directory
// whose extension is exactly DatasetExtension. The match is case-sensitive
// and entries are not filtered on their type.
//
// Paths are directory followed by the entry name, joined with a separator
// unless directory already ends with one; directory is not cleaned, so "./"
// gives "./a.dat". They are returned in directory listing order, which
// os.ReadDir sorts by name. Any listing failure aborts the collection.
func CollectFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, &DatasetError{Kind: ErrCollect, Path: directory, Err: err}
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		path := joinPath(directory, entry.Name())

		if ext, ok := GetExtension(path); ok && ext == DatasetExtension {
			files = append(files, path)
		}
	}

	return files, nil
}

func joinPath(directory, name string) string {
	if directory == "" || strings.HasSuffix(directory, "/") || strings.HasSuffix(directory, string(filepath.Separator)) {
		return directory + name
	}

	return directory + string(filepath.Separator) + name
}
