package config

import "path/filepath"

type Flags struct {
	Verbose    int      // Verbose flag
	Force      bool     // Force action
	JSON       bool     // JSON output
	Categories []string // Categories to filter records
}

// App is the default application configuration.
var App = &AppConfig{
	Name:   appName,
	Cmd:    command,
	DBName: MainDBName,
	Flags:  &Flags{},
	File:   Defaults(),
	Info: information{
		URL:     "https://github.com/mateconpizza/tabkeep#readme",
		Title:   "tabkeep: a tab history keeper",
		Desc:    "Keeps every url you have seen, its category and its open/close sessions",
		Version: version,
	},
	Env: environment{
		Home: "TABKEEP_HOME",
	},
}

// SetAppPaths sets the app data path.
func SetAppPaths(p string) {
	App.Path.Data = p
	App.Path.ConfigFile = filepath.Join(p, configFilename)
	App.Path.Backup = filepath.Join(p, "backup")
}
