package ingestion

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pkm-indexer/models"
)

var supported = func() map[string]bool {
	m := make(map[string]bool, len(models.SupportedExtensions))
	for _, ext := range models.SupportedExtensions {
		m[ext] = true
	}
	return m
}()

// Entry is one file found by Walk. Err is set when the file or the
// directory containing it could not be read.
type Entry struct {
	Path      string
	Extension string
	Supported bool
	Err       error
}

// Extension returns the lowercased extension of path, dot included.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsSupported reports whether ext is one of models.SupportedExtensions.
func IsSupported(ext string) bool {
	return supported[ext]
}

// Walk calls fn for every regular file under root. Unreadable entries are
// reported through Entry.Err and their subtree is skipped; the walk itself
// only stops when fn returns an error.
func Walk(root string, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if cbErr := fn(Entry{Path: path, Extension: Extension(path), Err: err}); cbErr != nil {
				return cbErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := Extension(path)
		if d.Type()&fs.ModeSymlink != 0 {
			// Links to files are indexed, links to directories are not descended.
			info, statErr := os.Stat(path)
			if statErr != nil {
				return fn(Entry{Path: path, Extension: ext, Err: statErr})
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		return fn(Entry{Path: path, Extension: ext, Supported: IsSupported(ext)})
	})
}
