package logx

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the zap levels exposed to callers
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// Config controls logger construction
type Config struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

var (
	mu    sync.RWMutex
	atom  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

func init() {
	l, err := build(false)
	if err != nil {
		l = zap.NewNop()
	}
	setLogger(l)
}

func build(json bool) (*zap.Logger, error) {
	encoding := "console"
	if json {
		encoding = "json"
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            atom,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build(zap.AddCallerSkip(1))
}

func setLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Configure rebuilds the global logger from cfg
func Configure(cfg Config) error {
	if cfg.Level != "" {
		lvl, err := ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		SetLevel(lvl)
	}

	l, err := build(cfg.JSON)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	setLogger(l)
	return nil
}

// ReplaceLogger swaps the global logger and returns a func restoring the previous one
func ReplaceLogger(l *zap.Logger) func() {
	mu.RLock()
	prev := base
	mu.RUnlock()

	setLogger(l.WithOptions(zap.AddCallerSkip(1)))
	return func() { setLogger(prev) }
}

// L returns the underlying zap logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetLevel changes the minimum level of the global logger
func SetLevel(l Level) {
	atom.SetLevel(zapcore.Level(l))
}

// ParseLevel parses debug, info, warn or error
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// With returns a child logger carrying structured key/value pairs
func With(keysAndValues ...any) *zap.SugaredLogger {
	return current().Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

func Debug(args ...any)                       { current().Debug(args...) }
func Debugf(format string, args ...any)       { current().Debugf(format, args...) }
func Info(args ...any)                        { current().Info(args...) }
func Infof(format string, args ...any)        { current().Infof(format, args...) }
func Warn(args ...any)                        { current().Warn(args...) }
func Warnf(format string, args ...any)        { current().Warnf(format, args...) }
func Error(args ...any)                       { current().Error(args...) }
func Errorf(format string, args ...any)       { current().Errorf(format, args...) }
func Fatal(args ...any)                       { current().Fatal(args...) }
func Fatalf(format string, args ...any)       { current().Fatalf(format, args...) }
func Infow(msg string, keysAndValues ...any)  { current().Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...any)  { current().Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...any) { current().Errorw(msg, keysAndValues...) }

// Sync flushes buffered entries
func Sync() error {
	return L().Sync()
}
