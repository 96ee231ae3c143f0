package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	gap "github.com/muesli/go-app-paths"
)

// DataHome returns the directory holding the database and the config file.
// A non-empty override, usually $TABKEEP_HOME, wins over the user data
// directory and gets the app name appended.
func DataHome(override string) (string, error) {
	if override != "" {
		return filepath.Join(override, appName), nil
	}

	p, err := gap.NewScope(gap.User, appName).DataPath("")
	if err != nil {
		return "", fmt.Errorf("getting data path: %w", err)
	}

	slog.Debug("data home", "path", p)

	return p, nil
}
