// Package config loads orgtrack settings from orgtrack.toml and ORGTRACK_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tgienger/orgtrack/internal/db"
	"github.com/tgienger/orgtrack/internal/models"
)

// Backend modes
const (
	ModeLocal   = "local"
	ModeGraphQL = "graphql"
)

// Config holds all application configuration
type Config struct {
	Backend BackendConfig
	Storage StorageConfig
	Log     LogConfig
	Tenant  TenantConfig
}

// BackendConfig selects where organizations, projects and tasks live
type BackendConfig struct {
	Mode     string // local or graphql
	Endpoint string
	Timeout  time.Duration
	Token    string
	Headers  map[string]string
}

// StorageConfig holds the local database location. Preferences are kept
// there in both backend modes.
type StorageConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// TenantConfig overrides the organization created when none exists
type TenantConfig struct {
	Name         string
	ContactEmail string
	Slug         string
}

// DefaultOrganization returns the seed input for the resolver
func (t TenantConfig) DefaultOrganization() models.CreateOrganizationInput {
	return models.CreateOrganizationInput{Name: t.Name, ContactEmail: t.ContactEmail, Slug: t.Slug}
}

// Load reads configuration. An explicit file must exist; otherwise
// orgtrack.toml is looked up in the working directory and
// $XDG_CONFIG_HOME/orgtrack, and a missing file means defaults.
func Load(file string) (*Config, error) {
	v := viper.New()
	if err := applyDefaults(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("orgtrack")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "orgtrack"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORGTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Backend: BackendConfig{
			Mode:     strings.ToLower(v.GetString("backend.mode")),
			Endpoint: v.GetString("backend.endpoint"),
			Timeout:  v.GetDuration("backend.timeout"),
			Token:    v.GetString("backend.token"),
			Headers:  v.GetStringMapString("backend.headers"),
		},
		Storage: StorageConfig{
			Path: v.GetString("storage.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Tenant: TenantConfig{
			Name:         v.GetString("tenant.name"),
			ContactEmail: v.GetString("tenant.contact_email"),
			Slug:         v.GetString("tenant.slug"),
		},
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = filepath.Join(filepath.Dir(cfg.Storage.Path), "orgtrack.log")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper) error {
	path, err := db.DefaultPath()
	if err != nil {
		return fmt.Errorf("config: resolve data directory: %w", err)
	}

	v.SetDefault("backend.mode", ModeLocal)
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("storage.path", path)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tenant.name", "My Workspace")
	v.SetDefault("tenant.contact_email", "user@personal.local")
	v.SetDefault("tenant.slug", "my-workspace")
	return nil
}

func (c *Config) validate() error {
	switch c.Backend.Mode {
	case ModeLocal:
	case ModeGraphQL:
		if c.Backend.Endpoint == "" {
			return errors.New("config: backend.endpoint is required in graphql mode")
		}
		u, err := url.Parse(c.Backend.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: backend.endpoint %q is not an http(s) url", c.Backend.Endpoint)
		}
	default:
		return fmt.Errorf("config: unknown backend.mode %q", c.Backend.Mode)
	}

	if c.Backend.Timeout <= 0 {
		return errors.New("config: backend.timeout must be positive")
	}
	if c.Storage.Path == "" {
		return errors.New("config: storage.path is required")
	}
	if strings.TrimSpace(c.Tenant.Name) == "" {
		return errors.New("config: tenant.name is required")
	}
	return nil
}
