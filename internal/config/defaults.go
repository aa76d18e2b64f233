package config

const (
	defaultConfigPath        = "~/.config/autolink/config.toml"
	defaultLibraryDB         = "~/.local/share/autolink/library.db"
	defaultLogDir            = "~/.local/share/autolink/logs"
	defaultScanConcurrency   = 4
	defaultLinkWorkers       = 4
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	rootsEnvVar              = "AUTOLINK_ROOTS"
	maxConfiguredConcurrency = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDB: defaultLibraryDB,
			LogDir:    defaultLogDir,
		},
		Scan: Scan{
			Concurrency: defaultScanConcurrency,
		},
		Link: Link{
			Workers: defaultLinkWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
