// Package config holds the settings a drawing session is created with.
// The value is passed explicitly to the document and figure factory.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/undo"
)

// Config holds persistent session settings.
type Config struct {
	UndoLimit       int     `toml:"undo_limit"`
	StrokeWidth     float64 `toml:"stroke_width"`
	StrokePlacement string  `toml:"stroke_placement"` // "inside", "center" or "outside"
	FontFamily      string  `toml:"font_family"`
	FontSize        float64 `toml:"font_size"`
	DefaultText     string  `toml:"default_text"`
	AutoOrient      bool    `toml:"auto_orient"` // apply EXIF orientation to images
	LastDir         string  `toml:"last_dir"`
}

// Default returns the default configuration.
func Default() Config {
	cwd, _ := os.Getwd()
	return Config{
		UndoLimit:       undo.DefaultLimit,
		StrokeWidth:     1,
		StrokePlacement: attr.Center.String(),
		FontFamily:      "Go",
		FontSize:        12,
		DefaultText:     "Text",
		AutoOrient:      true,
		LastDir:         cwd,
	}
}

// Path returns the default configuration file path.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drawkit"
	}
	return filepath.Join(home, ".drawkit")
}

// Placement returns the parsed stroke placement.
func (c Config) Placement() attr.Placement {
	p, err := attr.ParsePlacement(c.StrokePlacement)
	if err != nil {
		return attr.Center
	}
	return p
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.UndoLimit < 1 {
		return fmt.Errorf("config: undo_limit must be positive, got %d", c.UndoLimit)
	}
	if c.StrokeWidth < 0 {
		return fmt.Errorf("config: stroke_width must not be negative, got %v", c.StrokeWidth)
	}
	if _, err := attr.ParsePlacement(c.StrokePlacement); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("config: font_size must be positive, got %v", c.FontSize)
	}
	return nil
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return Default(), fmt.Errorf("config: unknown setting %q", keys[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	return Parse(string(data))
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	buf.WriteString("# drawkit configuration\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
