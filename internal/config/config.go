// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/objminify/pkg/encoding"
	"github.com/Faultbox/objminify/pkg/raster"
	"github.com/Faultbox/objminify/pkg/wavefront"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Input   string        `yaml:"input"`  // batch input directory
	Output  string        `yaml:"output"` // batch output directory
	Export  ExportConfig  `yaml:"export"`
	Minify  MinifyConfig  `yaml:"minify"`
	Batch   BatchConfig   `yaml:"batch"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds writer settings.
type ExportConfig struct {
	Mode         string `yaml:"mode"` // dedup or flat
	MaterialFile string `yaml:"material_file"`
}

// MinifyConfig holds texture atlas settings.
type MinifyConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Strict       bool   `yaml:"strict"` // fail on meshes without a texture
	TextureName  string `yaml:"texture_name"`
	MaterialName string `yaml:"material_name"`
	Padding      int    `yaml:"padding"`
}

// BatchConfig holds directory processing settings.
type BatchConfig struct {
	Workers       int           `yaml:"workers"` // 0 means one per CPU
	Merge         bool          `yaml:"merge"`   // one job per directory
	SkipExisting  bool          `yaml:"skip_existing"`
	Pattern       string        `yaml:"pattern"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// SourceConfig describes the input text files.
type SourceConfig struct {
	Encoding string `yaml:"encoding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input:  "input",
		Output: "export",
		Export: ExportConfig{
			Mode:         wavefront.Dedup.String(),
			MaterialFile: wavefront.DefaultMaterialFile,
		},
		Minify: MinifyConfig{
			Enabled:      true,
			TextureName:  "combined.png",
			MaterialName: "combined",
		},
		Batch: BatchConfig{
			SkipExisting:  true,
			Pattern:       "*.obj",
			WatchDebounce: 500 * time.Millisecond,
		},
		Source: SourceConfig{
			Encoding: encoding.UTF8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a job.
func (c *Config) Validate() error {
	if _, err := wavefront.ParseMode(c.Export.Mode); err != nil {
		return fmt.Errorf("%w: export.mode: %v", ErrInvalid, err)
	}
	if _, err := encoding.Lookup(c.Source.Encoding); err != nil {
		return fmt.Errorf("%w: source.encoding: %v", ErrInvalid, err)
	}
	if !raster.CanEncode(c.Minify.TextureName) {
		return fmt.Errorf("%w: minify.texture_name %q has no supported image extension", ErrInvalid, c.Minify.TextureName)
	}
	if c.Minify.Padding < 0 {
		return fmt.Errorf("%w: minify.padding must not be negative", ErrInvalid)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers must not be negative", ErrInvalid)
	}
	return nil
}
