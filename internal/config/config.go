// Package config handles renderer configuration loading and management.
package config

// Config holds all renderer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Rendering RenderingConfig `yaml:"rendering"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// TerrainConfig holds heightmap source settings.
type TerrainConfig struct {
	BackendURL string `yaml:"backend_url"`
	CacheDir   string `yaml:"cache_dir"`
	TileRadius int    `yaml:"tile_radius"` // Tiles loaded around the reference location
	Location   string `yaml:"location"`    // Reference tile, e.g. "49N 20E"
}

// RenderingConfig holds shading settings.
type RenderingConfig struct {
	AmbientStrength float32 `yaml:"ambient_strength"`
	DiffuseStrength float32 `yaml:"diffuse_strength"`
	PixelizeN       int     `yaml:"pixelize_n"` // Contour sampling block size in pixels
	SunTheta        float32 `yaml:"sun_theta"`  // Sun polar angle in degrees
	SunPhi          float32 `yaml:"sun_phi"`    // Sun azimuth in degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Terrain: TerrainConfig{
			BackendURL: "http://127.0.0.1:8000/terrain",
			CacheDir:   "",
			TileRadius: 1,
			Location:   "49N 20E",
		},
		Rendering: RenderingConfig{
			AmbientStrength: 0.1,
			DiffuseStrength: 0.9,
			PixelizeN:       1,
			SunTheta:        45,
			SunPhi:          135,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
