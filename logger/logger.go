// Package logger builds the zap logger shared by the builder, the content
// loader and the preview server.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFilename   = "pubsite.log"
	defaultLogMaxSizeMB  = 20
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 14
)

// Options controls where and how verbosely logs are written.
type Options struct {
	Mode       string `mapstructure:"mode"` // "debug" writes coloured console output at debug level
	Dir        string `mapstructure:"dir"`  // when set, JSON logs rotate inside this directory
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New creates a logger. Debug mode always logs to stdout; otherwise logs go
// to a rotating file when Dir is set and to stdout as JSON when it is not.
func New(opts Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(opts.Mode), "debug")
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	enc := encoderConfig()
	if debug {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stdout), level)
		return zap.New(core, zap.AddCaller())
	}

	sink := zapcore.AddSync(os.Stdout)
	if strings.TrimSpace(opts.Dir) != "" {
		ws, err := newFileWriteSyncer(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: falling back to stdout: %v\n", err)
		} else {
			sink = ws
		}
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, level)
	return zap.New(core, zap.AddCaller())
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	return enc
}

func newFileWriteSyncer(opts Options) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	filename := strings.TrimSpace(opts.Filename)
	if filename == "" {
		filename = defaultLogFilename
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, filename),
		MaxSize:    positiveOr(opts.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: positiveOr(opts.MaxBackups, defaultLogMaxBackups),
		MaxAge:     positiveOr(opts.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   opts.Compress,
	}), nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
