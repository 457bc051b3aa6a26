// Package config handles renderer and demo host configuration.
package config

// Config holds all settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds the renderer quality settings.
type RenderConfig struct {
	CubemapSize   int    `yaml:"cubemap_size"`
	ShadowmapSize int    `yaml:"shadowmap_size"`
	CubemapMode   string `yaml:"cubemap_mode"` // textures, cubemap, cubemap_gsaccel

	Shadows            bool   `yaml:"shadows"`
	SimpleShadows      bool   `yaml:"simple_shadows"`       // one cascade instead of four
	FullCubemapShadows bool   `yaml:"full_cubemap_shadows"` // refit shadows for every cube face
	ShadowFilter       string `yaml:"shadow_filter"`        // off, hardware, low, low_hardware, high, high_hardware
	PCSS               bool   `yaml:"pcss"`

	Bump          bool `yaml:"bump"`
	PixelLighting bool `yaml:"pixel_lighting"`

	Torch           bool    `yaml:"torch"`
	TorchBrightness float32 `yaml:"torch_brightness"`
	TorchRange      float32 `yaml:"torch_range"`

	LazyDrawing                  bool     `yaml:"lazy_drawing"`
	LazyInterval                 float64  `yaml:"lazy_interval"` // simulation seconds
	UpdateOnlyDominantOnMoving   bool     `yaml:"update_only_dominant_on_moving"`
	UpdateSecondDominantOnMoving bool     `yaml:"update_second_dominant_on_moving"`
	CubemapFallbackRenderers     []string `yaml:"cubemap_fallback_renderers"`

	Debug bool `yaml:"debug"`
	Text  bool `yaml:"text"`
}

// WindowConfig holds display settings of the demo host.
type WindowConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	Projection string  `yaml:"projection"` // perspective, fisheye, stereographic
	FOV        float64 `yaml:"fov"`
	// ScreenshotDir receives PNG captures of the framebuffer.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// SceneConfig holds the parameters of the procedural demo scene.
type SceneConfig struct {
	CamNearZ              float32 `yaml:"cam_near_z"`
	CamFarZ               float32 `yaml:"cam_far_z"`
	ShadowFarZ            float32 `yaml:"shadow_far_z"`
	ShadowSplitWeight     float32 `yaml:"shadow_split_weight"`
	TransparencyThreshold float32 `yaml:"transparency_threshold"`
	GridName              string  `yaml:"grid_name"`

	Latitude  float64 `yaml:"latitude"`  // degrees
	Longitude float64 `yaml:"longitude"` // degrees, east positive
	// TimeRate is simulation seconds per wall second.
	TimeRate float64 `yaml:"time_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			CubemapSize:                  1024,
			ShadowmapSize:                1024,
			CubemapMode:                  "textures",
			Shadows:                      true,
			ShadowFilter:                 "low",
			TorchBrightness:              0.5,
			TorchRange:                   5,
			LazyInterval:                 2,
			UpdateOnlyDominantOnMoving:   true,
			UpdateSecondDominantOnMoving: true,
			CubemapFallbackRenderers:     []string{"ANGLE"},
		},
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			Projection: "perspective",
			FOV:        60,

			ScreenshotDir: "screenshots",
		},
		Scene: SceneConfig{
			CamNearZ:              0.3,
			CamFarZ:               10000,
			ShadowFarZ:            10000,
			ShadowSplitWeight:     -1,
			TransparencyThreshold: 0.5,
			GridName:              "Unspecified Coordinate Frame",
			Latitude:              48.2,
			Longitude:             16.37,
			TimeRate:              60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
