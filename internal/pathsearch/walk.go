package pathsearch

import (
	"os"
	"path/filepath"

	"github.com/ktnyt/fae-sub001/internal/ignore"
)

// entry is one candidate path under root: a relative path plus whether it
// names a directory, used to format the [DIR]/[FILE] marker spec.md §4.5
// requires.
type entry struct {
	relPath string
	isDir   bool
}

// walkEntries collects every non-ignored path under root, files and
// directories alike (hidden entries included unless an ignore rule excludes
// them), the same descent internal/content's native backend and
// internal/symbolindex's builder use.
func walkEntries(root string, matcher *ignore.Matcher) []entry {
	var entries []entry
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if matcher != nil && matcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		entries = append(entries, entry{relPath: relPath, isDir: info.IsDir()})
		return nil
	})
	return entries
}
