package config

// Defaults for Options.
const (
	defaultOutput   = "text"
	defaultJobs     = 4
	defaultMaxBytes = 0 // unlimited
	defaultBufSize  = 64 << 10
	defaultDigest   = false
	defaultQuiet    = false

	// Warn keeps a normal run down to the report line.
	defaultLogLevel = "warn"

	// Rotation for the optional log file.
	defaultLogMaxSize    = 100 // MB
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28 // days
	defaultLogCompress   = true
)

// EnvConfigFile names a config file when --config is not given.
const EnvConfigFile = "UTF8SCAN_CONFIG"
