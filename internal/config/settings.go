package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigFile overrides the settings file location.
const EnvConfigFile = "TL_CONFIG"

// Settings are the non-secret defaults read from config.toml:
//
//	subdomain = "api"
//	api_version = "1.1"
//	output = "json"
//	timeout = "30s"
//
//	[cache]
//	ttl = "5m"
//	dir = "/tmp/tl-cache"
//	redis_addr = "localhost:6379"
//	redis_prefix = "tl:"
type Settings struct {
	Subdomain  string        `toml:"subdomain"`
	APIVersion string        `toml:"api_version"`
	BaseURL    string        `toml:"base_url"`
	Output     string        `toml:"output"`
	Timeout    Duration      `toml:"timeout"`
	Cache      CacheSettings `toml:"cache"`
}

// CacheSettings configure the GET response cache. A zero TTL disables it.
type CacheSettings struct {
	TTL         Duration `toml:"ttl"`
	Dir         string   `toml:"dir"`
	RedisAddr   string   `toml:"redis_addr"`
	RedisPrefix string   `toml:"redis_prefix"`
}

// Duration decodes TOML strings such as "30s" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", raw)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultSettingsPath returns $TL_CONFIG or <user config dir>/tweetlite/config.toml.
func DefaultSettingsPath() string {
	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		return path
	}
	dir, err := userConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, serviceName, "config.toml")
}

// LoadSettings reads the settings file at path. A missing file yields zero
// Settings; a malformed one is an error. Unknown keys are logged, not fatal.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("config file contains unknown keys", "path", path, "keys", keys)
	}
	return s, nil
}

// SaveSettings writes s to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("no config file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}
