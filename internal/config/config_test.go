package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("output:\n  format: \"table\"\nserver:\n  url: \"https://embedded.example.com\"\n  token: \"embedded_token\"")
	t.Setenv("HOSTENUM_SERVER_URL", "https://env.example.com")
	t.Setenv("HOSTENUM_FORMAT", "json")
	cli := CLIOverrides{URL: "https://cli.example.com", Token: "cli_token", Format: "simple"}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "https://cli.example.com" {
		t.Errorf("URL = %q, want CLI override", cfg.Server.URL)
	}
	if cfg.Server.Token != "cli_token" {
		t.Errorf("Token = %q, want CLI override", cfg.Server.Token)
	}
	if cfg.Output.Format != "simple" {
		t.Errorf("Format = %q, want CLI override", cfg.Output.Format)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("target:\n  computer_name: \"ws01\"\n  username: \"embedded\"")
	t.Setenv("HOSTENUM_COMPUTER", "dc01")
	t.Setenv("HOSTENUM_PASSWORD", "s3cret")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Target.ComputerName != "dc01" {
		t.Errorf("ComputerName = %q, want env override", cfg.Target.ComputerName)
	}
	if cfg.Target.Username != "embedded" {
		t.Errorf("Username = %q, want embedded value", cfg.Target.Username)
	}
	if cfg.Target.Password != "s3cret" {
		t.Errorf("Password = %q, want env value", cfg.Target.Password)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostenum.yaml")
	data := "archive:\n  dir: \"/var/lib/hostenum\"\n  max_size_mb: 5\nserver:\n  timeout: \"3s\"\n"
	if err := os.WriteFile(path, []byte(data), 0640); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLayered(CLIOverrides{}, []byte("archive:\n  max_size_mb: 1"), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Archive.Dir != "/var/lib/hostenum" || cfg.Archive.MaxSizeMB != 5 {
		t.Errorf("Archive = %+v, want file values", cfg.Archive)
	}
	if cfg.Server.Timeout.Duration != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Server.Timeout.Duration)
	}
}

func TestLoadLayered_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != "simple" {
		t.Errorf("Format = %q, want simple default", cfg.Output.Format)
	}
	if cfg.Server.Timeout.Duration != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s default", cfg.Server.Timeout.Duration)
	}
}

func TestLoadLayered_BadYAML(t *testing.T) {
	if _, err := LoadLayered(CLIOverrides{}, []byte("server: ["), ""); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteConfig_OmitsPassword(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "hostenum.yaml")

	cfg := DefaultConfig()
	cfg.Target.ComputerName = "dc01"
	cfg.Target.Password = "hunter2"

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "dc01") {
		t.Error("computer name not written")
	}
	if strings.Contains(string(data), "hunter2") {
		t.Error("password written to config file")
	}

	loaded, err := LoadLayered(CLIOverrides{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Target.ComputerName != "dc01" || loaded.Target.Password != "" {
		t.Errorf("reloaded target = %+v", loaded.Target)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "xml" }, wantErr: true},
		{name: "unknown level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "negative archive size", mutate: func(c *Config) { c.Archive.MaxSizeMB = -1 }, wantErr: true},
		{name: "https upload", mutate: func(c *Config) {
			c.Server.URL = "https://collector.example.com"
			c.Server.Token = "t"
		}},
		{name: "localhost http upload", mutate: func(c *Config) {
			c.Server.URL = "http://localhost:8080"
			c.Server.Token = "t"
		}},
		{name: "plain http upload", mutate: func(c *Config) {
			c.Server.URL = "http://collector.example.com"
			c.Server.Token = "t"
		}, wantErr: true},
		{name: "upload without token", mutate: func(c *Config) { c.Server.URL = "https://collector.example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
