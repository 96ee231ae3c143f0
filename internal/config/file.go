package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mateconpizza/tabkeep/internal/rules"
)

var (
	ErrInvalidRetention = errors.New("invalid retention")
	ErrInvalidInterval  = errors.New("invalid sweep interval")
)

const (
	DefaultRetention     = 30 * 24 * time.Hour
	DefaultSweepInterval = 24 * time.Hour
)

// File represents the configuration file.
type File struct {
	Retention     Duration     `yaml:"retention"`      // Age after which Ignore records are collected
	SweepInterval Duration     `yaml:"sweep_interval"` // Time between retention sweeps
	Rules         []rules.Rule `yaml:"rules"`          // Import categorization rules
}

// Duration is a time.Duration written as "720h" or "30d" in YAML.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}

	*d = Duration(v)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// parseDuration accepts the time.ParseDuration syntax plus a day suffix.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("duration %q: %w", s, err)
		}

		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}

	return d, nil
}

// ParseDuration parses durations such as "12h" or "30d".
func ParseDuration(s string) (time.Duration, error) {
	return parseDuration(s)
}

// Defaults returns the configuration used when no file exists.
func Defaults() *File {
	return &File{
		Retention:     Duration(DefaultRetention),
		SweepInterval: Duration(DefaultSweepInterval),
	}
}

// Load reads the YAML file at p over the defaults. A missing file yields the
// defaults.
func Load(p string) (*File, error) {
	cfg := Defaults()

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("config file not found, using defaults", "path", p)
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", p, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	slog.Debug("config loaded", "path", p, "rules", len(cfg.Rules))

	return cfg, nil
}

// Validate checks durations and rules.
func Validate(cfg *File) error {
	if cfg.Retention <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRetention, cfg.Retention)
	}

	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.SweepInterval)
	}

	for i, r := range cfg.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	return nil
}

// Write encodes cfg as YAML into p.
func Write(p string, cfg *File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
