// Package config loads the TOML configuration file and resolves defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig mirrors the TOML configuration file. Pointer fields distinguish
// "absent" from zero.
type FileConfig struct {
	Source SourceConfig `toml:"source"`
	Poll   PollConfig   `toml:"poll"`
}

type SourceConfig struct {
	Preferred  *string `toml:"preferred"`
	DBPath     *string `toml:"db-path"`
	Timezone   *string `toml:"timezone"`
	InstallURI *string `toml:"install-uri"`
}

type PollConfig struct {
	RefreshSeconds    *int `toml:"refresh-seconds"`
	BackoffBaseMillis *int `toml:"backoff-base-ms"`
	BackoffMaxMillis  *int `toml:"backoff-max-ms"`
}

// Config is the resolved runtime configuration.
type Config struct {
	PreferredSource string
	DBPath          string
	Location        *time.Location
	InstallURI      string

	RefreshInterval time.Duration
	BackoffBase     time.Duration
	BackoffMax      time.Duration
}

// Defaults used when the file is absent or a field is unset.
const (
	DefaultPreferredSource = "com.vendor.health"
	defaultRefresh         = 5 * time.Second
	defaultBackoffBase     = time.Second
	defaultBackoffMax      = 60 * time.Second
)

// Load reads the TOML config at path. A missing file is not an error; the
// returned Config carries the defaults.
func Load(path string, defaultDBPath string) (Config, error) {
	var fc FileConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return Config{}, fmt.Errorf("decode config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
	}
	return resolve(fc, defaultDBPath)
}

func resolve(fc FileConfig, defaultDBPath string) (Config, error) {
	cfg := Config{
		PreferredSource: DefaultPreferredSource,
		DBPath:          defaultDBPath,
		Location:        time.Local,
		RefreshInterval: defaultRefresh,
		BackoffBase:     defaultBackoffBase,
		BackoffMax:      defaultBackoffMax,
	}

	if v := fc.Source.Preferred; v != nil && *v != "" {
		cfg.PreferredSource = *v
	}
	if v := fc.Source.DBPath; v != nil && *v != "" {
		cfg.DBPath = *v
	}
	if v := fc.Source.InstallURI; v != nil {
		cfg.InstallURI = *v
	}
	if v := fc.Source.Timezone; v != nil && *v != "" {
		loc, err := time.LoadLocation(*v)
		if err != nil {
			return Config{}, fmt.Errorf("load timezone %q: %w", *v, err)
		}
		cfg.Location = loc
	}

	if v := fc.Poll.RefreshSeconds; v != nil && *v > 0 {
		cfg.RefreshInterval = time.Duration(*v) * time.Second
	}
	if v := fc.Poll.BackoffBaseMillis; v != nil && *v > 0 {
		cfg.BackoffBase = time.Duration(*v) * time.Millisecond
	}
	if v := fc.Poll.BackoffMaxMillis; v != nil && *v > 0 {
		cfg.BackoffMax = time.Duration(*v) * time.Millisecond
	}
	return cfg, nil
}

// DefaultConfigPath returns the TOML config path under the XDG config home.
func DefaultConfigPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "stepr", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "stepr-config.toml")
	}
	return filepath.Join(home, ".config", "stepr", "config.toml")
}
