// Package config loads the dashboard configuration: a YAML (or JSON) file,
// then TALLY_* environment variables, with .env files filling in whatever
// the environment leaves unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks the environment variables that override the file.
const EnvPrefix = "TALLY_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreLoam   = "loam"
)

// Config is the resolved configuration of a tally process.
type Config struct {
	Addr        string        `yaml:"addr" json:"addr" mapstructure:"addr"`
	LogLevel    string        `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFormat   string        `yaml:"log_format" json:"log_format" mapstructure:"log_format"`
	Debounce    time.Duration `yaml:"debounce" json:"debounce" mapstructure:"debounce"`
	RefreshMode string        `yaml:"refresh_mode" json:"refresh_mode" mapstructure:"refresh_mode"`
	Theme       string        `yaml:"theme" json:"theme" mapstructure:"theme"`
	ThemeFile   string        `yaml:"theme_file" json:"theme_file" mapstructure:"theme_file"`
	Store       string        `yaml:"store" json:"store" mapstructure:"store"`
	DataDir     string        `yaml:"data_dir" json:"data_dir" mapstructure:"data_dir"`
	Redis       Redis         `yaml:"redis" json:"redis" mapstructure:",squash"`
}

// Redis configures the shared record store.
type Redis struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"redis_addr"`
	Password string `yaml:"password" json:"password" mapstructure:"redis_password"`
	DB       int    `yaml:"db" json:"db" mapstructure:"redis_db"`
	Prefix   string `yaml:"prefix" json:"prefix" mapstructure:"redis_prefix"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:        ":8080",
		LogLevel:    "info",
		LogFormat:   "text",
		Debounce:    250 * time.Millisecond,
		RefreshMode: "update",
		Theme:       "light",
		Store:       StoreMemory,
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "tally:",
		},
	}
}

// Load reads path over the defaults and applies env overrides.
// A missing file is not an error: the defaults stand.
func Load(path string, env map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := unmarshal(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := ApplyEnv(cfg, env); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// unmarshal accepts YAML and JSON alike, JSON being valid YAML.
func unmarshal(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ApplyEnv decodes TALLY_* entries of env onto cfg. Values are weakly typed:
// "3" is a valid redis db and "1s" a valid debounce.
func ApplyEnv(cfg *Config, env map[string]string) error {
	overrides := make(map[string]any)
	for k, v := range env {
		if name, ok := strings.CutPrefix(k, EnvPrefix); ok {
			overrides[strings.ToLower(name)] = v
		}
	}
	if len(overrides) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// Environ returns the process environment merged with the given .env files.
// Variables already set in the environment win; missing files are skipped.
func Environ(dotenv ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	for _, file := range dotenv {
		vals, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		for k, v := range vals {
			if _, set := env[k]; !set {
				env[k] = v
			}
		}
	}
	return env, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StoreLoam:
		if c.DataDir == "" {
			return errors.New("store loam requires data_dir")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	return nil
}
