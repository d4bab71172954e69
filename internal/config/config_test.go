package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	if cfg.Paths == nil {
		t.Fatal("DefaultConfig() returned nil Paths")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("DefaultConfig() log level = %q", cfg.LogLevel)
	}
	if cfg.Palette.Highlight == "" || cfg.Palette.Structural == "" {
		t.Fatalf("DefaultConfig() returned empty palette: %+v", cfg.Palette)
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMs <= 0 {
		t.Fatalf("DefaultConfig() returned invalid watch config: %+v", cfg.Watch)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	paths := PathsAt(filepath.Join(t.TempDir(), "breaker"))
	cfg, err := LoadFrom(paths)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	want := defaults(paths)
	if !reflect.DeepEqual(cfg.Palette, want.Palette) || cfg.Watch != want.Watch || cfg.LogLevel != want.LogLevel {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Paths != paths {
		t.Fatalf("expected paths to be preserved")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	paths := PathsAt(t.TempDir())
	content := `{
  "log_level": "debug",
  "palette": {"highlight": "#ffff00"},
  "keymap": {"bindings": {"copy": ["y", "ctrl+y"]}},
  "watch": {"enabled": false}
}`
	if err := os.WriteFile(paths.ConfigPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("BREAKER_PALETTE_MUTED", "#333333")

	cfg, err := LoadFrom(paths)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.Palette.Highlight != "#ffff00" {
		t.Fatalf("highlight = %q, want file override", cfg.Palette.Highlight)
	}
	if cfg.Palette.Muted != "#333333" {
		t.Fatalf("muted = %q, want env override", cfg.Palette.Muted)
	}
	if cfg.Palette.Structural != "#7aa2f7" {
		t.Fatalf("structural = %q, want default", cfg.Palette.Structural)
	}
	if cfg.Watch.Enabled {
		t.Fatalf("expected watch to be disabled")
	}
	if cfg.Watch.DebounceMs != 300 {
		t.Fatalf("debounce = %d, want default 300", cfg.Watch.DebounceMs)
	}
	keys, ok := cfg.KeyMap.BindingFor("copy")
	if !ok || !reflect.DeepEqual(keys, []string{"y", "ctrl+y"}) {
		t.Fatalf("copy binding = %v (ok=%v)", keys, ok)
	}
}

func TestLoadFromInvalidFile(t *testing.T) {
	paths := PathsAt(t.TempDir())
	if err := os.WriteFile(paths.ConfigPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadFrom(paths); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestKeyMapBindingForCaseInsensitive(t *testing.T) {
	k := KeyMapConfig{Bindings: map[string][]string{"quit": {"x"}}}
	if keys, ok := k.BindingFor("QUIT"); !ok || keys[0] != "x" {
		t.Fatalf("expected lower-case fallback, got %v (ok=%v)", keys, ok)
	}
	if _, ok := (KeyMapConfig{}).BindingFor("quit"); ok {
		t.Fatalf("empty keymap should have no bindings")
	}
}
