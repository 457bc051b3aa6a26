package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test render defaults
	if cfg.Render.CubemapSize != 1024 {
		t.Errorf("expected cubemap size 1024, got %d", cfg.Render.CubemapSize)
	}
	if cfg.Render.ShadowmapSize != 1024 {
		t.Errorf("expected shadowmap size 1024, got %d", cfg.Render.ShadowmapSize)
	}
	if cfg.Render.CubemapMode != "textures" {
		t.Errorf("expected cubemap mode 'textures', got %s", cfg.Render.CubemapMode)
	}
	if cfg.Render.LazyDrawing {
		t.Error("expected lazy drawing to be off by default")
	}
	if cfg.Render.LazyInterval != 2 {
		t.Errorf("expected lazy interval 2, got %f", cfg.Render.LazyInterval)
	}
	if !cfg.Render.UpdateOnlyDominantOnMoving || !cfg.Render.UpdateSecondDominantOnMoving {
		t.Error("expected dominant face updates to be on by default")
	}
	if len(cfg.Render.CubemapFallbackRenderers) != 1 || cfg.Render.CubemapFallbackRenderers[0] != "ANGLE" {
		t.Errorf("expected fallback renderers [ANGLE], got %v", cfg.Render.CubemapFallbackRenderers)
	}
	if cfg.Render.TorchBrightness != 0.5 || cfg.Render.TorchRange != 5 {
		t.Errorf("unexpected torch defaults %f/%f", cfg.Render.TorchBrightness, cfg.Render.TorchRange)
	}

	// Test window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Window.Projection != "perspective" {
		t.Errorf("expected perspective projection, got %s", cfg.Window.Projection)
	}
	if cfg.Window.ScreenshotDir != "screenshots" {
		t.Errorf("expected screenshots dir, got %q", cfg.Window.ScreenshotDir)
	}

	// Test scene defaults
	if cfg.Scene.CamNearZ != 0.3 || cfg.Scene.CamFarZ != 10000 {
		t.Errorf("unexpected camera range %f..%f", cfg.Scene.CamNearZ, cfg.Scene.CamFarZ)
	}
	if cfg.Scene.ShadowSplitWeight >= 0 {
		t.Errorf("expected automatic split weight, got %f", cfg.Scene.ShadowSplitWeight)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
render:
  cubemap_size: 2048
  cubemap_mode: cubemap_gsaccel
  shadows: false
  shadow_filter: high_hardware
  lazy_drawing: true
  lazy_interval: 5.5
  update_second_dominant_on_moving: false
  cubemap_fallback_renderers: ["ANGLE", "llvmpipe"]

window:
  width: 1920
  height: 1080
  fullscreen: true
  projection: fisheye
  fov: 180

scene:
  cam_near_z: 0.5
  grid_name: "UTM 33N"

logging:
  level: "debug"
  log_file: "scenery3d.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Render.CubemapSize != 2048 {
		t.Errorf("expected cubemap size 2048, got %d", cfg.Render.CubemapSize)
	}
	if cfg.Render.ShadowmapSize != 1024 {
		t.Errorf("expected untouched shadowmap size 1024, got %d", cfg.Render.ShadowmapSize)
	}
	if cfg.Render.CubemapMode != "cubemap_gsaccel" {
		t.Errorf("expected cubemap_gsaccel, got %s", cfg.Render.CubemapMode)
	}
	if cfg.Render.Shadows {
		t.Error("expected shadows to be false")
	}
	if !cfg.Render.LazyDrawing || cfg.Render.LazyInterval != 5.5 {
		t.Errorf("expected lazy drawing every 5.5s, got %v/%f", cfg.Render.LazyDrawing, cfg.Render.LazyInterval)
	}
	if !cfg.Render.UpdateOnlyDominantOnMoving {
		t.Error("expected untouched dominant update flag")
	}
	if cfg.Render.UpdateSecondDominantOnMoving {
		t.Error("expected second dominant update to be off")
	}
	if got := strings.Join(cfg.Render.CubemapFallbackRenderers, ","); got != "ANGLE,llvmpipe" {
		t.Errorf("unexpected fallback renderers %s", got)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.Projection != "fisheye" || cfg.Window.FOV != 180 {
		t.Errorf("expected fisheye 180, got %s %f", cfg.Window.Projection, cfg.Window.FOV)
	}

	if cfg.Scene.CamNearZ != 0.5 {
		t.Errorf("expected near 0.5, got %f", cfg.Scene.CamNearZ)
	}
	if cfg.Scene.CamFarZ != 10000 {
		t.Errorf("expected untouched far 10000, got %f", cfg.Scene.CamFarZ)
	}
	if cfg.Scene.GridName != "UTM 33N" {
		t.Errorf("expected grid name 'UTM 33N', got %s", cfg.Scene.GridName)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "scenery3d.log" {
		t.Errorf("expected log file 'scenery3d.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config is invalid: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
render:
  cubemap_size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/scenery3d.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"cubemap mode", func(c *Config) { c.Render.CubemapMode = "sphere" }, "render.cubemap_mode"},
		{"shadow filter", func(c *Config) { c.Render.ShadowFilter = "ultra" }, "render.shadow_filter"},
		{"projection", func(c *Config) { c.Window.Projection = "mercator" }, "window.projection"},
		{"negative size", func(c *Config) { c.Render.ShadowmapSize = -1 }, "texture sizes"},
		{"negative interval", func(c *Config) { c.Render.LazyInterval = -2 }, "lazy_interval"},
		{"camera range", func(c *Config) { c.Scene.CamFarZ = 0.1 }, "cam_near_z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %q, got %v", tt.field, err)
			}
		})
	}

	cfg := Default()
	cfg.Render.CubemapMode = "sphere"
	cfg.Window.Projection = "mercator"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "cubemap_mode") || !strings.Contains(err.Error(), "projection") {
		t.Errorf("expected both problems to be reported, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Isolate from a real user config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create scenery3d.yaml in current directory
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find scenery3d.yaml in current directory")
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
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Render.Debug {
					t.Error("expected debug overlay to be enabled with debug flag")
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "projection flag",
			setup: func() {
				*flagProjection = "stereographic"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Projection != "stereographic" {
					t.Errorf("expected stereographic projection, got %s", cfg.Window.Projection)
				}
			},
			teardown: func() {
				*flagProjection = ""
			},
		},
		{
			name: "cubemap and lazy flags",
			setup: func() {
				*flagCubemap = "cubemap"
				*flagLazy = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.CubemapMode != "cubemap" {
					t.Errorf("expected cubemap mode, got %s", cfg.Render.CubemapMode)
				}
				if !cfg.Render.LazyDrawing {
					t.Error("expected lazy drawing with lazy flag")
				}
			},
			teardown: func() {
				*flagCubemap = ""
				*flagLazy = false
			},
		},
		{
			name: "no shadows flag",
			setup: func() {
				*flagNoShadows = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Shadows {
					t.Error("expected shadows to be off with no-shadows flag")
				}
			},
			teardown: func() {
				*flagNoShadows = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("render:\n  cubemap_mode: spherical\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown cubemap mode")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Render.CubemapMode = "cubemap"
	cfg.Scene.GridName = "Test Grid"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Render.CubemapMode != "cubemap" || loaded.Scene.GridName != "Test Grid" {
		t.Errorf("saved values not reloaded: %s %s", loaded.Render.CubemapMode, loaded.Scene.GridName)
	}
}

func TestSaveToRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Default().SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	cfg := Default()
	cfg.Render.ShadowFilter = "blurry"
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected SaveTo to reject an unknown shadow filter")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(before) != string(after) {
		t.Error("rejected save changed the file")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}
