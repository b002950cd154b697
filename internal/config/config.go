// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vitalis-app/hostenum/internal/output"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all hostenum configuration.
type Config struct {
	Target  TargetConfig  `yaml:"target"`
	Output  OutputConfig  `yaml:"output"`
	Archive ArchiveConfig `yaml:"archive"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// TargetConfig selects the machine and identity collectors run against.
// Empty values mean the local machine and the current user.
type TargetConfig struct {
	ComputerName string `yaml:"computer_name"`
	Username     string `yaml:"username"`
	Password     string `yaml:"-"`
}

// OutputConfig holds console and export settings.
type OutputConfig struct {
	Format     string `yaml:"format"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ArchiveConfig holds the on-disk report archive settings. An empty Dir
// disables archiving.
type ArchiveConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// ServerConfig holds report upload settings. An empty URL disables upload.
type ServerConfig struct {
	URL     string   `yaml:"url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: output.FormatSimple,
		},
		Archive: ArchiveConfig{
			MaxSizeMB: 50,
		},
		Server: ServerConfig{
			Timeout: Duration{10 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	ComputerName string
	Username     string
	Password     string
	Format       string
	SQLitePath   string
	ArchiveDir   string
	URL          string
	Token        string
	LogLevel     string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyCLIOverrides(cfg, cli)

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed. The password is never written.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

func applyEnvOverrides(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Target.ComputerName, "HOSTENUM_COMPUTER")
	set(&cfg.Target.Username, "HOSTENUM_USERNAME")
	set(&cfg.Target.Password, "HOSTENUM_PASSWORD")
	set(&cfg.Output.Format, "HOSTENUM_FORMAT")
	set(&cfg.Logging.Level, "HOSTENUM_LOG_LEVEL")
	set(&cfg.Server.URL, "HOSTENUM_SERVER_URL")
	set(&cfg.Server.Token, "HOSTENUM_SERVER_TOKEN")
}

func applyCLIOverrides(cfg *Config, cli CLIOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Target.ComputerName, cli.ComputerName)
	set(&cfg.Target.Username, cli.Username)
	set(&cfg.Target.Password, cli.Password)
	set(&cfg.Output.Format, cli.Format)
	set(&cfg.Output.SQLitePath, cli.SQLitePath)
	set(&cfg.Archive.Dir, cli.ArchiveDir)
	set(&cfg.Server.URL, cli.URL)
	set(&cfg.Server.Token, cli.Token)
	set(&cfg.Logging.Level, cli.LogLevel)
}

// Validate checks that the configuration is usable. Upload settings are
// only checked when a server URL is set.
func (c *Config) Validate() error {
	if !output.IsFormat(c.Output.Format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output.Format, strings.Join(output.Formats, ", "))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Archive.MaxSizeMB < 0 {
		return fmt.Errorf("archive max_size_mb must not be negative (got: %d)", c.Archive.MaxSizeMB)
	}
	if c.Server.URL != "" {
		if !strings.HasPrefix(c.Server.URL, "https://") {
			// Allow localhost for development
			if !strings.Contains(c.Server.URL, "localhost") && !strings.Contains(c.Server.URL, "127.0.0.1") {
				return fmt.Errorf("server URL must use HTTPS (got: %s)", c.Server.URL)
			}
		}
		if c.Server.Token == "" {
			return fmt.Errorf("server token is required for upload")
		}
	}
	return nil
}
