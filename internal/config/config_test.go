package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test terrain defaults
	if cfg.Terrain.Location != "49N 20E" {
		t.Errorf("expected location '49N 20E', got %s", cfg.Terrain.Location)
	}
	if cfg.Terrain.TileRadius != 1 {
		t.Errorf("expected tile radius 1, got %d", cfg.Terrain.TileRadius)
	}
	if cfg.Terrain.BackendURL == "" {
		t.Error("expected a default backend URL")
	}

	// Test rendering defaults
	if cfg.Rendering.AmbientStrength != 0.1 {
		t.Errorf("expected ambient strength 0.1, got %f", cfg.Rendering.AmbientStrength)
	}
	if cfg.Rendering.DiffuseStrength != 0.9 {
		t.Errorf("expected diffuse strength 0.9, got %f", cfg.Rendering.DiffuseStrength)
	}
	if cfg.Rendering.PixelizeN != 1 {
		t.Errorf("expected pixelize_n 1, got %d", cfg.Rendering.PixelizeN)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

terrain:
  backend_url: "http://tiles.example.com/terrain"
  cache_dir: "/var/cache/topo"
  tile_radius: 2
  location: "61S 147W"

rendering:
  ambient_strength: 0.2
  diffuse_strength: 0.8
  pixelize_n: 4

logging:
  level: "debug"
  log_file: "render.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Terrain.BackendURL != "http://tiles.example.com/terrain" {
		t.Errorf("unexpected backend URL %s", cfg.Terrain.BackendURL)
	}
	if cfg.Terrain.CacheDir != "/var/cache/topo" {
		t.Errorf("unexpected cache dir %s", cfg.Terrain.CacheDir)
	}
	if cfg.Terrain.TileRadius != 2 {
		t.Errorf("expected tile radius 2, got %d", cfg.Terrain.TileRadius)
	}
	if cfg.Terrain.Location != "61S 147W" {
		t.Errorf("expected location '61S 147W', got %s", cfg.Terrain.Location)
	}

	if cfg.Rendering.AmbientStrength != 0.2 {
		t.Errorf("expected ambient strength 0.2, got %f", cfg.Rendering.AmbientStrength)
	}
	if cfg.Rendering.PixelizeN != 4 {
		t.Errorf("expected pixelize_n 4, got %d", cfg.Rendering.PixelizeN)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "render.log" {
		t.Errorf("expected log file 'render.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := FindConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = FindConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Location = "12N 77E"
	cfg.Rendering.PixelizeN = 3
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Terrain.Location != "12N 77E" {
		t.Errorf("expected location '12N 77E', got %s", loaded.Terrain.Location)
	}
	if loaded.Rendering.PixelizeN != 3 {
		t.Errorf("expected pixelize_n 3, got %d", loaded.Rendering.PixelizeN)
	}
}

func TestSaveToConfigDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir not relocatable via XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Terrain.TileRadius = 2
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(ConfigDir(), "config.yaml")
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Terrain.TileRadius != 2 {
		t.Errorf("expected tile_radius 2, got %d", loaded.Terrain.TileRadius)
	}

	// The write should have gone through a renamed temporary
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after Save")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "backend flag",
			setup: func() {
				*flagBackend = "http://other.example.com/terrain"
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.BackendURL != "http://other.example.com/terrain" {
					t.Errorf("unexpected backend URL %s", cfg.Terrain.BackendURL)
				}
			},
			teardown: func() {
				*flagBackend = ""
			},
		},
		{
			name: "location flag",
			setup: func() {
				*flagLocation = "33S 70W"
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Location != "33S 70W" {
					t.Errorf("expected location '33S 70W', got %s", cfg.Terrain.Location)
				}
			},
			teardown: func() {
				*flagLocation = ""
			},
		},
		{
			name: "radius flag",
			setup: func() {
				*flagRadius = 0
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.TileRadius != 0 {
					t.Errorf("expected tile radius 0, got %d", cfg.Terrain.TileRadius)
				}
			},
			teardown: func() {
				*flagRadius = -1
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
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
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
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
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
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

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
