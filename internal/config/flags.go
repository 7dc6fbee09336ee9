package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers  = flag.Int("workers", 0, "Number of parallel batch jobs")
	flagMode     = flag.String("mode", "", "Export mode: dedup or flat")
	flagMerge    = flag.Bool("merge", false, "Merge all models of a directory into one job")
	flagForce    = flag.Bool("force", false, "Reprocess jobs whose output already exists")
	flagStrict   = flag.Bool("strict", false, "Fail on meshes without a texture")
	flagEncoding = flag.String("encoding", "", "Source text encoding (utf-8, euc-kr, shift_jis)")
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
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagMode != "" {
		cfg.Export.Mode = *flagMode
	}
	if *flagMerge {
		cfg.Batch.Merge = true
	}
	if *flagForce {
		cfg.Batch.SkipExisting = false
	}
	if *flagStrict {
		cfg.Minify.Strict = true
	}
	if *flagEncoding != "" {
		cfg.Source.Encoding = *flagEncoding
	}
}
