// Package config handles viewer and tool configuration.
package config

// Config holds all tribatch settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Assembly AssemblyConfig `yaml:"assembly"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings for the viewer.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// AssemblyConfig holds mesh assembly defaults. Epsilon is the per-component
// weld tolerance, CheckRange bounds the dedup search window, and MaxVerts
// caps the triangle corners a batch accepts (at most 65535).
type AssemblyConfig struct {
	Epsilon    float32 `yaml:"epsilon"`
	CheckRange int     `yaml:"check_range"`
	MaxVerts   int     `yaml:"max_verts"`
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
		Assembly: AssemblyConfig{
			Epsilon:    1e-5,
			CheckRange: 64,
			MaxVerts:   65535,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
