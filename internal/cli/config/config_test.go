package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conduit-lang/netdocs/internal/docs"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	// No config file: defaults
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Framework != "netcore-2.2" {
		t.Errorf("expected default framework 'netcore-2.2', got %s", cfg.Framework)
	}

	if cfg.Corpus.APIDocsDir != "dotnet-api-docs" {
		t.Errorf("expected default api docs dir 'dotnet-api-docs', got %s", cfg.Corpus.APIDocsDir)
	}

	if cfg.Corpus.SamplesDir != "samples" {
		t.Errorf("expected default samples dir 'samples', got %s", cfg.Corpus.SamplesDir)
	}

	if cfg.Links.ExternalBase != "https://docs.microsoft.com/en-us/dotnet/api" {
		t.Errorf("unexpected default external base %s", cfg.Links.ExternalBase)
	}

	if cfg.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Workers)
	}

	if cfg.Output.Driver != "fs" || cfg.Output.Dir != "public" {
		t.Errorf("expected fs output to 'public', got %s to %s", cfg.Output.Driver, cfg.Output.Dir)
	}

	if cfg.Redis.Prefix != "netdocs:" {
		t.Errorf("expected redis prefix 'netdocs:', got %s", cfg.Redis.Prefix)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdirTemp(t)

	configContent := `
framework: netframework-4.8
corpus:
  root: /srv/dotnet
workers: 2
output:
  driver: sqlite
  dsn: file:docs.db
serve:
  host: 0.0.0.0
  port: 8080
`
	os.WriteFile("netdocs.yml", []byte(configContent), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Framework != "netframework-4.8" {
		t.Errorf("expected framework 'netframework-4.8', got %s", cfg.Framework)
	}

	if cfg.Corpus.Root != "/srv/dotnet" {
		t.Errorf("expected corpus root '/srv/dotnet', got %s", cfg.Corpus.Root)
	}

	if cfg.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Workers)
	}

	if cfg.Output.Driver != "sqlite" || cfg.Output.DSN != "file:docs.db" {
		t.Errorf("unexpected output %+v", cfg.Output)
	}

	if cfg.ServeAddr() != "0.0.0.0:8080" {
		t.Errorf("expected serve address '0.0.0.0:8080', got %s", cfg.ServeAddr())
	}

	storeCfg := cfg.StoreConfig()
	if storeCfg.Driver != "sqlite" || storeCfg.DSN != "file:docs.db" {
		t.Errorf("unexpected store config %+v", storeCfg)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("framework: netstandard-2.0\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Framework != "netstandard-2.0" {
		t.Errorf("expected framework 'netstandard-2.0', got %s", cfg.Framework)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	dir := chdirTemp(t)

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NETDOCS_FRAMEWORK", "netframework-4.8")
	t.Setenv("NETDOCS_OUTPUT_DIR", "site")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Framework != "netframework-4.8" {
		t.Errorf("expected framework from environment, got %s", cfg.Framework)
	}
	if cfg.Output.Dir != "site" {
		t.Errorf("expected output dir from environment, got %s", cfg.Output.Dir)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Framework: "netcore-2.2",
			Workers:   4,
			Links:     LinksConfig{ExternalBase: "https://example.test/api"},
			Output:    OutputConfig{Driver: "fs", Dir: "public"},
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Serve:     ServeConfig{Port: 9292},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "framework with quote", mutate: func(c *Config) { c.Framework = "net'core" }, wantErr: "framework"},
		{name: "empty framework", mutate: func(c *Config) { c.Framework = "" }, wantErr: "framework"},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers"},
		{name: "relative external base", mutate: func(c *Config) { c.Links.ExternalBase = "docs/api" }, wantErr: "external_base"},
		{name: "unknown driver", mutate: func(c *Config) { c.Output.Driver = "mongo" }, wantErr: "output.driver"},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.Output.Driver = "sqlite" }, wantErr: "output.dsn"},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Output.Driver = "postgres"
			c.Output.DSN = "postgres://localhost/docs"
		}},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Output.Driver = "redis"
			c.Redis.Addr = ""
		}, wantErr: "redis.addr"},
		{name: "fs without dir", mutate: func(c *Config) { c.Output.Dir = "" }, wantErr: "output.dir"},
		{name: "port out of range", mutate: func(c *Config) { c.Serve.Port = 70000 }, wantErr: "serve.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateConfig_FrameworkRuleMatchesParser(t *testing.T) {
	for _, framework := range []string{"net'core", "net core", "", "netcore-2.2", "xamarin-ios10"} {
		cfg := Config{
			Framework: framework,
			Workers:   1,
			Output:    OutputConfig{Driver: "fs", Dir: "public"},
		}
		parserErr := docs.ValidateFramework(framework)
		err := cfg.Validate()

		if parserErr == nil {
			if err != nil {
				t.Errorf("framework %q: expected no error, got %v", framework, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), parserErr.Error()) {
			t.Errorf("framework %q: expected error containing %q, got %v", framework, parserErr, err)
		}
	}
}
