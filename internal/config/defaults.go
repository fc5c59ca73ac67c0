package config

const (
	defaultCachePath      = "~/.local/share/retroforge/disccache.db"
	defaultLogDir         = "~/.local/share/retroforge/logs"
	defaultToolBinary     = "chdman"
	defaultToolTimeout    = 3600
	defaultToolWorkers    = 2
	defaultContentMode    = "omit"
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
	maxToolWorkers        = 8
	maxToolTimeoutSeconds = 86400
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CachePath: defaultCachePath,
			LogDir:    defaultLogDir,
		},
		Tool: Tool{
			Binary:         defaultToolBinary,
			TimeoutSeconds: defaultToolTimeout,
			Workers:        defaultToolWorkers,
		},
		Content: Content{
			Mode: defaultContentMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
