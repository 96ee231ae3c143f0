package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/sys"
	"github.com/mateconpizza/tabkeep/internal/sys/files"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

func initConfig() {
	cfg := config.App
	config.SetVerbosity(cfg.Flags.Verbose)

	// load data home path for the app.
	dataHomePath, err := loadDataPath()
	if err != nil {
		sys.ErrAndExit(err)
	}

	config.SetAppPaths(dataHomePath)
	cfg.DBName = files.EnsureSuffix(cfg.DBName, ".db")
	cfg.DBPath = filepath.Join(dataHomePath, cfg.DBName)

	// load config from YAML
	f, err := loadConfigFile(cfg.Path.ConfigFile, configInit)
	if err != nil {
		sys.ErrAndExit(err)
	}

	cfg.File = f
}

// loadConfigFile reads the YAML config at p. A file that cannot be read or
// fails validation is an error, unless overwrite is set (config --init), in
// which case defaults are used so the file can be rewritten.
func loadConfigFile(p string, overwrite bool) (*config.File, error) {
	f, err := config.Load(p)
	if err == nil {
		return f, nil
	}

	if overwrite {
		slog.Warn("ignoring invalid config", "path", p, "error", err)
		return config.Defaults(), nil
	}

	return nil, fmt.Errorf("loading config %q: %w (fix the file or rewrite it with 'config --init --force')", p, err)
}

// init sets the config for the root command.
func init() {
	initRootFlags(Root)
	cobra.OnInitialize(initConfig)
}

// loadDataPath loads the path to the application's home directory, from
// $TABKEEP_HOME when set, else the user data directory.
func loadDataPath() (string, error) {
	e := config.App.Env.Home
	env := sys.Env(e, "")
	if env != "" {
		slog.Debug("reading home env", e, env)
		env = files.ExpandHomeDir(env)
	}

	p, err := config.DataHome(env)
	if err != nil {
		return "", fmt.Errorf("loading paths: %w", err)
	}

	return p, nil
}

// openVault opens the database, creating it when missing, and populates the
// cache. The caller closes the vault.
func openVault(ctx context.Context) (*vault.Vault, error) {
	cfg := config.App
	if err := files.MkdirAll(cfg.Path.Data); err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", cfg.DBName, err)
	}

	v := vault.New(store, vault.WithArtifacts(db.NewArtifactStore(store)))
	if err := v.Init(ctx); err != nil {
		v.Close()
		return nil, err
	}

	return v, nil
}

// RequireDatabase fails when the database does not exist yet.
func RequireDatabase(_ *cobra.Command, _ []string) error {
	if !files.Exists(config.App.DBPath) {
		return fmt.Errorf("%w: %q", db.ErrDBNotFound, config.App.DBName)
	}

	return nil
}

// PrettyVersion formats version in a pretty way.
func PrettyVersion() string {
	return fmt.Sprintf("%s v%s %s/%s", config.App.Name, config.App.Info.Version, runtime.GOOS, runtime.GOARCH)
}
