package storage

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
)

//go:embed sql/setup_fts.sql
var defaultSetupScript string

// DefaultSetupScript returns the built-in full-text search setup script.
func DefaultSetupScript() string {
	return defaultSetupScript
}

// LoadSetupScript reads the script at path. When path is empty or the file
// does not exist and allowDefault is set, the built-in script is returned.
// source names where the script came from, for logging.
func LoadSetupScript(path string, allowDefault bool) (script, source string, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return string(data), path, nil
		case !allowDefault || !errors.Is(err, os.ErrNotExist):
			return "", "", fmt.Errorf("SQL setup file %s: %w", path, err)
		}
	} else if !allowDefault {
		return "", "", errors.New("no SQL setup file given")
	}
	return defaultSetupScript, "built-in setup_fts.sql", nil
}
