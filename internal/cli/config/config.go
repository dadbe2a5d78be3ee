package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/netdocs/internal/docs"
	"github.com/conduit-lang/netdocs/internal/store"
)

// Config represents the netdocs configuration
type Config struct {
	Framework string       `mapstructure:"framework"`
	Corpus    CorpusConfig `mapstructure:"corpus"`
	Links     LinksConfig  `mapstructure:"links"`
	Workers   int          `mapstructure:"workers"`
	Output    OutputConfig `mapstructure:"output"`
	Redis     RedisConfig  `mapstructure:"redis"`
	Serve     ServeConfig  `mapstructure:"serve"`
}

// CorpusConfig locates the cloned dotnet-api-docs and samples repositories
type CorpusConfig struct {
	Root       string `mapstructure:"root"`
	APIDocsDir string `mapstructure:"api_docs_dir"`
	SamplesDir string `mapstructure:"samples_dir"`
}

// LinksConfig represents link configuration
type LinksConfig struct {
	ExternalBase string `mapstructure:"external_base"`
}

// OutputConfig selects where rendered pages go
type OutputConfig struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig represents redis output configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ServeConfig represents preview server configuration
type ServeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load loads the configuration from netdocs.yml or netdocs.yaml in the working
// directory, or from path when it is not empty. NETDOCS_* variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("framework", "netcore-2.2")
	v.SetDefault("corpus.root", "docs/dotnet")
	v.SetDefault("corpus.api_docs_dir", "dotnet-api-docs")
	v.SetDefault("corpus.samples_dir", "samples")
	v.SetDefault("links.external_base", "https://docs.microsoft.com/en-us/dotnet/api")
	v.SetDefault("workers", 8)
	v.SetDefault("output.driver", store.DriverFS)
	v.SetDefault("output.dir", "public")
	v.SetDefault("output.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "netdocs:")
	v.SetDefault("serve.host", "localhost")
	v.SetDefault("serve.port", 9292)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("netdocs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("NETDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration. It is called by Load and again after flags are applied.
func (c *Config) Validate() error {
	if err := docs.ValidateFramework(c.Framework); err != nil {
		return fmt.Errorf("framework: %w", err)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", c.Workers)
	}

	if c.Links.ExternalBase != "" {
		u, err := url.Parse(c.Links.ExternalBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("links.external_base must be an absolute URL, got: %s", c.Links.ExternalBase)
		}
	}

	switch c.Output.Driver {
	case store.DriverFS:
		if c.Output.Dir == "" {
			return fmt.Errorf("output.dir is required for the %s driver", c.Output.Driver)
		}
	case store.DriverSQLite, store.DriverPostgres:
		if c.Output.DSN == "" {
			return fmt.Errorf("output.dsn is required for the %s driver", c.Output.Driver)
		}
	case store.DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the %s driver", c.Output.Driver)
		}
	default:
		return fmt.Errorf("output.driver must be one of %s, got: %s", strings.Join(store.Drivers, ", "), c.Output.Driver)
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 0 and 65535, got: %d", c.Serve.Port)
	}
	return nil
}

// StoreConfig returns the output store settings
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver: c.Output.Driver,
		Dir:    c.Output.Dir,
		DSN:    c.Output.DSN,
		Redis: store.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// ServeAddr returns host:port of the preview server
func (c *Config) ServeAddr() string {
	return fmt.Sprintf("%s:%d", c.Serve.Host, c.Serve.Port)
}
