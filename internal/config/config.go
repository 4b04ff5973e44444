// Package config holds the utf8scan CLI options.
//
// Options start from the defaults in defaults.go. A JSON config file may
// override any subset of fields; command-line flags are applied last by the
// caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

// Options configures a utf8scan run.
type Options struct {
	Output      string     `json:"output"`       // text, json or table
	Jobs        int        `json:"jobs"`         // inputs validated concurrently
	MaxBytes    int64      `json:"max_bytes"`    // per-input byte limit, 0 for none
	Digest      bool       `json:"digest"`       // compute CRC-32 and SHA-256
	BufferSize  int        `json:"buffer_size"`  // read buffer per input, bytes
	Quiet       bool       `json:"quiet"`        // suppress success reports
	MetricsFile string     `json:"metrics_file"` // Prometheus textfile path
	Log         LogOptions `json:"log"`
}

// LogOptions configures logging.
type LogOptions struct {
	Level      string `json:"level"`       // debug, info, warn, error
	FilePath   string `json:"file_path"`   // JSON log file, empty for none
	MaxSize    int    `json:"max_size"`    // MB per file before rotation
	MaxBackups int    `json:"max_backups"` // rotated files kept
	MaxAge     int    `json:"max_age"`     // days
	Compress   bool   `json:"compress"`    // gzip rotated files
}

// Default returns options with every field at its default.
func Default() *Options {
	return &Options{
		Output:     defaultOutput,
		Jobs:       defaultJobs,
		MaxBytes:   defaultMaxBytes,
		Digest:     defaultDigest,
		BufferSize: defaultBufSize,
		Quiet:      defaultQuiet,
		Log: LogOptions{
			Level:      defaultLogLevel,
			MaxSize:    defaultLogMaxSize,
			MaxBackups: defaultLogMaxBackups,
			MaxAge:     defaultLogMaxAge,
			Compress:   defaultLogCompress,
		},
	}
}

// Load reads a JSON config file over the defaults. An empty path falls back
// to $UTF8SCAN_CONFIG, and to plain defaults when that is unset too.
func Load(path string) (*Options, error) {
	opts := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// Fields missing from the file keep their defaults.
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option values.
func (o *Options) Validate() error {
	switch o.Output {
	case OutputText, OutputJSON, OutputTable:
	default:
		return fmt.Errorf("invalid output format %q (want text, json or table)", o.Output)
	}
	if o.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", o.Jobs)
	}
	if o.BufferSize < 16 {
		return fmt.Errorf("buffer_size must be at least 16, got %d", o.BufferSize)
	}
	if o.MaxBytes < 0 {
		return fmt.Errorf("max_bytes must not be negative, got %d", o.MaxBytes)
	}
	if _, err := o.Log.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses Level.
func (l LogOptions) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}
