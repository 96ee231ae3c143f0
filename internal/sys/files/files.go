// Package files provides utilities for working with files/directories.
package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const dirPerm = 0o755

var ErrFileExists = errors.New("file already exists")

// Exists checks if a file exists.
func Exists(s string) bool {
	_, err := os.Stat(s)
	return !os.IsNotExist(err)
}

// MkdirAll creates all the given paths.
func MkdirAll(s ...string) error {
	for _, path := range s {
		if Exists(path) {
			continue
		}

		slog.Debug("creating path", "path", path)
		if err := os.MkdirAll(path, dirPerm); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

// EnsureSuffix appends suffix to s when it has no extension.
func EnsureSuffix(s, suffix string) string {
	if s == "" || filepath.Ext(s) != "" {
		return s
	}

	return s + suffix
}

// Touch creates a file at the given path.
// If the file already exists, the function succeeds when existOK is true.
func Touch(s string, existOK bool) (*os.File, error) {
	if Exists(s) && !existOK {
		return nil, fmt.Errorf("%w: %q", ErrFileExists, s)
	}

	if err := MkdirAll(filepath.Dir(s)); err != nil {
		return nil, err
	}

	f, err := os.Create(s)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	return f, nil
}

// ExpandHomeDir replaces a leading "~/" with the user home directory.
func ExpandHomeDir(s string) string {
	if strings.HasPrefix(s, "~/") {
		dirname, _ := os.UserHomeDir()
		s = filepath.Join(dirname, s[2:])
	}

	return s
}
