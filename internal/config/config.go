package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BREAKER_LOG_LEVEL.
const EnvPrefix = "BREAKER"

// KeyMapConfig holds user overrides for keybindings.
type KeyMapConfig struct {
	Bindings map[string][]string `mapstructure:"bindings"`
}

// BindingFor returns the configured keys for an action, if present.
func (k KeyMapConfig) BindingFor(action string) ([]string, bool) {
	if len(k.Bindings) == 0 {
		return nil, false
	}
	if keys, ok := k.Bindings[action]; ok {
		return keys, true
	}
	if keys, ok := k.Bindings[strings.ToLower(action)]; ok {
		return keys, true
	}
	return nil, false
}

// Palette holds the #RRGGBB colours the terminal viewer paints cells with.
type Palette struct {
	Default    string `mapstructure:"default"`
	Muted      string `mapstructure:"muted"`
	Structural string `mapstructure:"structural"`
	Highlight  string `mapstructure:"highlight"`
}

// WatchConfig controls live reload of the alignment file.
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMs int  `mapstructure:"debounce_ms"`
}

// Config holds the application configuration
type Config struct {
	Paths    *Paths       `mapstructure:"-"`
	LogLevel string       `mapstructure:"log_level"`
	Palette  Palette      `mapstructure:"palette"`
	KeyMap   KeyMapConfig `mapstructure:"keymap"`
	Watch    WatchConfig  `mapstructure:"watch"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaults(paths), nil
}

func defaults(paths *Paths) *Config {
	return &Config{
		Paths:    paths,
		LogLevel: "info",
		Palette: Palette{
			Default:    "#a9b1d6",
			Muted:      "#565f89",
			Structural: "#7aa2f7",
			Highlight:  "#e0af68",
		},
		KeyMap: KeyMapConfig{},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 300,
		},
	}
}

// Load loads config overrides from ~/.breaker/config.json if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom reads paths.ConfigPath over the defaults, then applies BREAKER_*
// environment overrides. A missing file is not an error.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaults(paths)

	v := viper.New()
	v.SetConfigFile(paths.ConfigPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("palette.default", cfg.Palette.Default)
	v.SetDefault("palette.muted", cfg.Palette.Muted)
	v.SetDefault("palette.structural", cfg.Palette.Structural)
	v.SetDefault("palette.highlight", cfg.Palette.Highlight)
	v.SetDefault("watch.enabled", cfg.Watch.Enabled)
	v.SetDefault("watch.debounce_ms", cfg.Watch.DebounceMs)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Paths = paths
	return cfg, nil
}
