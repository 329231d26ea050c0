// Package config loads mosaic settings from an optional YAML file overlaid
// with MOSAIC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override file values.
// MOSAIC_STORE_REDIS_ADDR maps to store.redis.addr.
const EnvPrefix = "MOSAIC_"

// Config is the full application configuration.
type Config struct {
	Canvas    string          `mapstructure:"canvas"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig selects the canvas persistence backend.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"` // memory, file or redis
	Path   string      `mapstructure:"path"`   // file driver directory
	Redis  RedisConfig `mapstructure:"redis"`

	// Encryption seals persisted node lists when Key is set.
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

// EncryptionConfig holds base64 AES-256 keys. Previous keys are only used to decrypt.
type EncryptionConfig struct {
	Key      string   `mapstructure:"key"`
	Previous []string `mapstructure:"previous"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// GeneratorConfig selects the image generation backend.
type GeneratorConfig struct {
	Kind     string        `mapstructure:"kind"`     // placeholder or process
	Registry string        `mapstructure:"registry"` // process: tools file
	Tool     string        `mapstructure:"tool"`     // process: tool name in the registry
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TemplatesConfig points at a markdown template catalog used to seed new canvases.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Canvas: "main",
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Driver: "file",
			Path:   ".mosaic",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "mosaic:"},
		},
		HTTP:      HTTPConfig{Port: 8080},
		Generator: GeneratorConfig{Kind: "placeholder", Timeout: 2 * time.Minute},
	}
}

// Load reads path (if it exists) and applies the environment overlay on top of Default.
// An empty path skips the file.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	overlayEnv(raw, os.Environ())

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Decode maps a generic value onto out, accepting strings for numbers and durations.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Generator.Kind {
	case "placeholder":
	case "process":
		if c.Generator.Registry == "" || c.Generator.Tool == "" {
			return errors.New("process generator requires registry and tool")
		}
	default:
		return fmt.Errorf("unknown generator kind %q", c.Generator.Kind)
	}
	if c.Canvas == "" {
		return errors.New("canvas id cannot be empty")
	}
	return nil
}

func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
		set(raw, path, val)
	}
}

func set(m map[string]any, path []string, val string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			if _, taken := m[p]; taken {
				return
			}
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = val
}
