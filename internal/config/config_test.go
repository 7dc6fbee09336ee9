package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Input != "input" {
		t.Errorf("expected input 'input', got %s", cfg.Input)
	}
	if cfg.Output != "export" {
		t.Errorf("expected output 'export', got %s", cfg.Output)
	}

	if cfg.Export.Mode != "dedup" {
		t.Errorf("expected export mode 'dedup', got %s", cfg.Export.Mode)
	}
	if cfg.Export.MaterialFile != "material.mtl" {
		t.Errorf("expected material file 'material.mtl', got %s", cfg.Export.MaterialFile)
	}

	if !cfg.Minify.Enabled {
		t.Error("expected minify to be enabled by default")
	}
	if cfg.Minify.Strict {
		t.Error("expected strict to be false by default")
	}
	if cfg.Minify.TextureName != "combined.png" {
		t.Errorf("expected texture name 'combined.png', got %s", cfg.Minify.TextureName)
	}
	if cfg.Minify.MaterialName != "combined" {
		t.Errorf("expected material name 'combined', got %s", cfg.Minify.MaterialName)
	}

	if cfg.Batch.Workers != 0 {
		t.Errorf("expected workers 0, got %d", cfg.Batch.Workers)
	}
	if !cfg.Batch.SkipExisting {
		t.Error("expected skip_existing to be true by default")
	}
	if cfg.Batch.Pattern != "*.obj" {
		t.Errorf("expected pattern '*.obj', got %s", cfg.Batch.Pattern)
	}
	if cfg.Batch.WatchDebounce != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %v", cfg.Batch.WatchDebounce)
	}

	if cfg.Source.Encoding != "utf-8" {
		t.Errorf("expected encoding 'utf-8', got %s", cfg.Source.Encoding)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
input: models
output: out
export:
  mode: flat
  material_file: scene.mtl
minify:
  enabled: false
  strict: true
  texture_name: atlas.png
  material_name: atlas
  padding: 2
batch:
  workers: 8
  merge: true
  skip_existing: false
  pattern: "*.OBJ"
  watch_debounce: 2s
source:
  encoding: euc-kr
logging:
  level: debug
  log_file: objminify.log
`)

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Input != "models" || cfg.Output != "out" {
		t.Errorf("expected models -> out, got %s -> %s", cfg.Input, cfg.Output)
	}
	if cfg.Export.Mode != "flat" {
		t.Errorf("expected mode 'flat', got %s", cfg.Export.Mode)
	}
	if cfg.Export.MaterialFile != "scene.mtl" {
		t.Errorf("expected material file 'scene.mtl', got %s", cfg.Export.MaterialFile)
	}
	if cfg.Minify.Enabled {
		t.Error("expected minify to be disabled")
	}
	if !cfg.Minify.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Minify.TextureName != "atlas.png" || cfg.Minify.MaterialName != "atlas" {
		t.Errorf("expected atlas names, got %s and %s", cfg.Minify.TextureName, cfg.Minify.MaterialName)
	}
	if cfg.Minify.Padding != 2 {
		t.Errorf("expected padding 2, got %d", cfg.Minify.Padding)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Batch.Workers)
	}
	if !cfg.Batch.Merge {
		t.Error("expected merge to be true")
	}
	if cfg.Batch.SkipExisting {
		t.Error("expected skip_existing to be false")
	}
	if cfg.Batch.Pattern != "*.OBJ" {
		t.Errorf("expected pattern '*.OBJ', got %s", cfg.Batch.Pattern)
	}
	if cfg.Batch.WatchDebounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Batch.WatchDebounce)
	}
	if cfg.Source.Encoding != "euc-kr" {
		t.Errorf("expected encoding 'euc-kr', got %s", cfg.Source.Encoding)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "objminify.log" {
		t.Errorf("expected log file 'objminify.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	path := writeConfig(t, "export:\n  mode: flat\n")

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Export.Mode != "flat" {
		t.Errorf("expected mode 'flat', got %s", cfg.Export.Mode)
	}
	if cfg.Export.MaterialFile != "material.mtl" {
		t.Errorf("expected default material file kept, got %s", cfg.Export.MaterialFile)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := writeConfig(t, "")

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Errorf("expected empty file to load, got %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "batch:\n  workers: not a number\n  invalid syntax here\n"},
		{"unknown key", "minify:\n  padd: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Export.Mode = "zip" }},
		{"encoding", func(c *Config) { c.Source.Encoding = "latin-9000" }},
		{"padding", func(c *Config) { c.Minify.Padding = -1 }},
		{"workers", func(c *Config) { c.Batch.Workers = -2 }},
		{"webp atlas", func(c *Config) { c.Minify.TextureName = "atlas.webp" }},
		{"gif atlas", func(c *Config) { c.Minify.TextureName = "atlas.gif" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if filepath.Base(dir) != "objminify" {
		t.Errorf("expected app dir objminify, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "objminify.yaml"), []byte("input: a\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path != "./objminify.yaml" {
		t.Errorf("expected ./objminify.yaml, got %s", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 3 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Batch.Workers != 3 {
					t.Errorf("expected workers 3, got %d", cfg.Batch.Workers)
				}
			},
			teardown: func() { *flagWorkers = 0 },
		},
		{
			name:  "mode flag",
			setup: func() { *flagMode = "flat" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Mode != "flat" {
					t.Errorf("expected mode 'flat', got %s", cfg.Export.Mode)
				}
			},
			teardown: func() { *flagMode = "" },
		},
		{
			name:  "merge and force flags",
			setup: func() { *flagMerge = true; *flagForce = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Batch.Merge {
					t.Error("expected merge with merge flag")
				}
				if cfg.Batch.SkipExisting {
					t.Error("expected skip_existing off with force flag")
				}
			},
			teardown: func() { *flagMerge = false; *flagForce = false },
		},
		{
			name:  "strict and encoding flags",
			setup: func() { *flagStrict = true; *flagEncoding = "sjis" },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Minify.Strict {
					t.Error("expected strict with strict flag")
				}
				if cfg.Source.Encoding != "sjis" {
					t.Errorf("expected encoding 'sjis', got %s", cfg.Source.Encoding)
				}
			},
			teardown: func() { *flagStrict = false; *flagEncoding = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeConfig(t, `
export:
  mode: flat
batch:
  workers: 2
`)

	*flagConfig = path
	*flagWorkers = 6
	defer func() {
		*flagConfig = ""
		*flagWorkers = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Batch.Workers != 6 {
		t.Errorf("expected workers 6 from flag, got %d", cfg.Batch.Workers)
	}
	if cfg.Export.Mode != "flat" {
		t.Errorf("expected mode 'flat' from file, got %s", cfg.Export.Mode)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	*flagConfig = writeConfig(t, "export:\n  mode: zip\n")
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Batch.Workers = 5
	cfg.Minify.Padding = 1
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", *cfg, *loaded)
	}
}
