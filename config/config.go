package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mdviewer/log"
)

const ConfigFileName = "config.toml"

// Config represents the application configuration
type Config struct {
	// Theme selects the colour palette: "dark", "light" or "auto".
	Theme string `toml:"theme"`
	// Parser selects the block renderer: "auto", "structured" or "lines".
	Parser string `toml:"parser"`
	// ExtendedImages enables JPEG, BMP, TIFF, WebP and SVG decoding.
	ExtendedImages bool `toml:"extended_images"`
	// OSC8 controls terminal hyperlinks: "auto", "on" or "off".
	OSC8 string `toml:"osc8"`
	// ArchiveFormat is used by "save to file": "zip" or "tar.xz".
	ArchiveFormat string `toml:"archive_format"`
	// ImageMaxWidth caps inline image thumbnails, in terminal cells.
	ImageMaxWidth int `toml:"image_max_width"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme:          "dark",
		Parser:         "auto",
		ExtendedImages: true,
		OSC8:           "auto",
		ArchiveFormat:  "zip",
		ImageMaxWidth:  60,
	}
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// LoadConfig reads config.toml. A missing file is created with defaults; a
// malformed one is logged and replaced by defaults in memory.
func LoadConfig() *Config {
	configPath := ConfigPath()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			defaultCfg := DefaultConfig()
			if saveErr := SaveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	config.normalize()
	return config
}

// normalize replaces unknown enum values with defaults.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	c.Theme = oneOf("theme", c.Theme, defaults.Theme, "dark", "light", "auto")
	c.Parser = oneOf("parser", c.Parser, defaults.Parser, "auto", "structured", "lines")
	c.OSC8 = oneOf("osc8", c.OSC8, defaults.OSC8, "auto", "on", "off")
	c.ArchiveFormat = oneOf("archive_format", c.ArchiveFormat, defaults.ArchiveFormat, "zip", "tar.xz")
	if c.ImageMaxWidth <= 0 {
		c.ImageMaxWidth = defaults.ImageMaxWidth
	}
}

func oneOf(field, value, fallback string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	if v != "" {
		log.WarningLog.Printf("config: invalid %s %q, using %q", field, value, fallback)
	}
	return fallback
}

// SaveConfig writes the configuration to config.toml.
func SaveConfig(config *Config) error {
	if err := os.MkdirAll(GetConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0o644)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}
