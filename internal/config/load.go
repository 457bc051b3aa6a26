package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/projection"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
)

// FileName is the name searched for in the working and config directories.
const FileName = "scenery3d.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings and sizes.
func (c *Config) Validate() error {
	var errs []error
	if _, err := cubemap.ParseMode(c.Render.CubemapMode); err != nil {
		errs = append(errs, fmt.Errorf("render.cubemap_mode: %w", err))
	}
	if _, err := shader.ParseFilterQuality(c.Render.ShadowFilter); err != nil {
		errs = append(errs, fmt.Errorf("render.shadow_filter: %w", err))
	}
	if _, err := projection.ParseKind(c.Window.Projection); err != nil {
		errs = append(errs, fmt.Errorf("window.projection: %w", err))
	}
	if c.Render.CubemapSize < 0 || c.Render.ShadowmapSize < 0 {
		errs = append(errs, errors.New("render: texture sizes must not be negative"))
	}
	if c.Render.LazyInterval < 0 {
		errs = append(errs, errors.New("render.lazy_interval must not be negative"))
	}
	if c.Scene.CamNearZ <= 0 || c.Scene.CamFarZ <= c.Scene.CamNearZ {
		errs = append(errs, fmt.Errorf("scene: need 0 < cam_near_z < cam_far_z, got %g and %g", c.Scene.CamNearZ, c.Scene.CamFarZ))
	}
	return errors.Join(errs...)
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./" + FileName,
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Scenery3D")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Scenery3D")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "scenery3d")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "scenery3d")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
