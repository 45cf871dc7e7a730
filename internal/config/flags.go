package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagArchive = flag.String("archive", "", "Archive file (repeatable via comma separation)")
	flagList    = flag.String("listfile", "", "Listfile path")
	flagOut     = flag.String("out", "", "Export output directory")
	flagFormat  = flag.String("format", "", "Export output format")
	flagWidth   = flag.Int("width", 0, "Window width")
	flagHeight  = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagArchive != "" {
		cfg.Storage.Archives = splitList(*flagArchive)
	}
	if *flagList != "" {
		cfg.Storage.Listfile = *flagList
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
