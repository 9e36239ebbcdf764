package extract

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ListImages returns the image filenames in dir whose extension is in exts,
// sorted lexicographically. Extension matching ignores case.
func ListImages(fs afero.Fs, dir string, exts []string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", dir, err)
	}

	allowed := make([]string, len(exts))
	for i, ext := range exts {
		allowed[i] = strings.ToLower(ext)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(allowed, strings.ToLower(filepath.Ext(entry.Name()))) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}
