// Package config handles browser configuration loading and management.
package config

// Config holds all browser settings.
type Config struct {
	Storage StorageConfig   `yaml:"storage"`
	Export  ExportConfig    `yaml:"export"`
	Viewer  ViewerConfig    `yaml:"viewer"`
	Filters map[string]bool `yaml:"filters"` // per-extension visibility, e.g. ".mdx": true
	Logging LoggingConfig   `yaml:"logging"`
}

// StorageConfig locates the game archives and listfile.
type StorageConfig struct {
	Archives []string `yaml:"archives"` // container files, later entries shadow earlier
	Listfile string   `yaml:"listfile"` // id;name listfile path
}

// ExportConfig holds batch export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"` // "raw" passthrough; other formats are not implemented
	Workers   int    `yaml:"workers"`
}

// ViewerConfig holds preview window and camera settings.
type ViewerConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	VSync          bool    `yaml:"vsync"`
	FOV            float32 `yaml:"fov"` // degrees
	AutoPreview    bool    `yaml:"auto_preview"`
	MaxTextureSize int     `yaml:"max_texture_size"` // 0 disables downscaling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Archives: []string{"data/base.arc"},
			Listfile: "data/listfile.csv",
		},
		Export: ExportConfig{
			OutputDir: "export",
			Format:    "raw",
			Workers:   4,
		},
		Viewer: ViewerConfig{
			Width:          1280,
			Height:         720,
			VSync:          true,
			FOV:            45,
			AutoPreview:    true,
			MaxTextureSize: 2048,
		},
		Filters: map[string]bool{
			".mdx":  true,
			".skin": false,
			".blp":  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
