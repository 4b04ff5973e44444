// Package log builds the zap logger used by the CLI.
//
// Human-readable entries go to the console writer (stderr). When a file path
// is configured, JSON entries are also written to a rotating file.
package log

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Neumenon/utf8scan/internal/config"
)

// New creates a logger writing to console and, if set, to opts.FilePath.
// The returned close function flushes and closes the file sink.
func New(opts config.LogOptions, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := opts.ZapLevel()
	if err != nil {
		return nil, nil, err
	}
	if console == nil {
		console = os.Stderr
	}
	atom := zap.NewAtomicLevelAt(level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), atom),
	}

	var file *lumberjack.Logger
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		file = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), atom))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}
