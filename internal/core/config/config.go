package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dates-lab/dates-manager/internal/core/chrono"
)

// Config is the top-level application config plus the interval policies
// resolved from their span strings.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Seed     SeedConfig     `koanf:"seed"`
	Windows  WindowsConfig  `koanf:"windows"`
	Export   ExportConfig   `koanf:"export"`

	// Intervals is populated by Load after parsing the window spans.
	Intervals IntervalPolicies `koanf:"-"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// SeedConfig points at a directory of YAML definition files loaded into
// an empty catalog at startup.
type SeedConfig struct {
	Dir     string `koanf:"dir"`
	Enabled bool   `koanf:"enabled"`
}

// WindowsConfig carries the three observation windows as span strings
// (Go durations plus a "Xd" day suffix), e.g. before: "0d", after: "4d".
type WindowsConfig struct {
	Day      WindowSpanConfig `koanf:"day"`
	Reminder WindowSpanConfig `koanf:"reminder"`
	Timeline WindowSpanConfig `koanf:"timeline"`
}

type WindowSpanConfig struct {
	Before string `koanf:"before"`
	After  string `koanf:"after"`
}

type ExportConfig struct {
	CalendarName string `koanf:"calendar_name"`
}

// IntervalPolicies are the parsed window policies handed to the engine.
type IntervalPolicies struct {
	Day      chrono.Interval
	Reminder chrono.Interval
	Timeline chrono.Interval
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Database.Type != "" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if c.Seed.Enabled && strings.TrimSpace(c.Seed.Dir) == "" {
		return fmt.Errorf("seed.dir is required when seeding is enabled")
	}

	if strings.TrimSpace(c.Export.CalendarName) == "" {
		return fmt.Errorf("export.calendar_name is required")
	}

	return nil
}

// parseWindows resolves the span strings into interval policies.
func (c *Config) parseWindows() error {
	parse := func(name string, spec WindowSpanConfig) (chrono.Interval, error) {
		before, err := chrono.ParseSpan(spec.Before)
		if err != nil {
			return chrono.Interval{}, fmt.Errorf("windows.%s.before: %w", name, err)
		}
		after, err := chrono.ParseSpan(spec.After)
		if err != nil {
			return chrono.Interval{}, fmt.Errorf("windows.%s.after: %w", name, err)
		}
		iv := chrono.Interval{Before: before, After: after}
		if err := iv.Validate(); err != nil {
			return chrono.Interval{}, fmt.Errorf("windows.%s: %w", name, err)
		}
		return iv, nil
	}

	var err error
	if c.Intervals.Day, err = parse("day", c.Windows.Day); err != nil {
		return err
	}
	if c.Intervals.Reminder, err = parse("reminder", c.Windows.Reminder); err != nil {
		return err
	}
	if c.Intervals.Timeline, err = parse("timeline", c.Windows.Timeline); err != nil {
		return err
	}
	return nil
}

// Load parses config from file + env, validates it, and resolves the
// window policies.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"database.type":           "postgres",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"seed.dir":                "./config/seeds",
		"seed.enabled":            false,
		"windows.day.before":      "0d",
		"windows.day.after":       "1d",
		"windows.reminder.before": "0d",
		"windows.reminder.after":  "4d",
		"windows.timeline.before": "7d",
		"windows.timeline.after":  "8d",
		"export.calendar_name":    "dates-manager",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("DATES_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "DATES_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.parseWindows(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
