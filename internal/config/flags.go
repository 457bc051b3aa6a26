package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and the debug overlay")
	flagProjection = flag.String("projection", "", "Projection: perspective, fisheye or stereographic")
	flagCubemap    = flag.String("cubemap-mode", "", "Cubemap mode: textures, cubemap or cubemap_gsaccel")
	flagNoShadows  = flag.Bool("no-shadows", false, "Disable shadow mapping")
	flagLazy       = flag.Bool("lazy", false, "Enable lazy cubemap drawing")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.Debug = true
	}
	if *flagProjection != "" {
		cfg.Window.Projection = *flagProjection
	}
	if *flagCubemap != "" {
		cfg.Render.CubemapMode = *flagCubemap
	}
	if *flagNoShadows {
		cfg.Render.Shadows = false
	}
	if *flagLazy {
		cfg.Render.LazyDrawing = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
