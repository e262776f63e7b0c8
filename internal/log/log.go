// Package log provides category-tagged structured logging for dread.
//
// The terminal belongs to the UI, so log output goes to a file. Until Init is
// called every call is a no-op.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags a log line with the subsystem that produced it.
type Category string

const (
	CatConfig  Category = "config"
	CatAudio   Category = "audio"
	CatPlayer  Category = "player"
	CatDB      Category = "db"
	CatUI      Category = "ui"
	CatCLI     Category = "cli"
	CatTracing Category = "tracing"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Options configures the file logger.
type Options struct {
	// Path is the log file. Parent directories are created.
	Path string
	// Debug enables debug level output.
	Debug bool
}

// Init opens the log file and installs the global logger.
// The returned function flushes and closes the file.
func Init(opts Options) (func() error, error) {
	if opts.Path == "" {
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	SetLogger(zap.New(core))

	return func() error {
		_ = Logger().Sync()
		SetLogger(zap.NewNop())
		return f.Close()
	}, nil
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func sugar(cat Category) *zap.SugaredLogger {
	return Logger().Sugar().With("cat", string(cat))
}

// Debug logs at debug level with alternating key/value pairs.
func Debug(cat Category, msg string, kv ...any) {
	sugar(cat).Debugw(msg, kv...)
}

// Info logs at info level.
func Info(cat Category, msg string, kv ...any) {
	sugar(cat).Infow(msg, kv...)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, kv ...any) {
	sugar(cat).Warnw(msg, kv...)
}

// ErrorErr logs err at error level.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	sugar(cat).Errorw(msg, append([]any{"error", err}, kv...)...)
}

// SafeGo runs fn on a new goroutine and logs any panic instead of crashing
// the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				sugar(CatCLI).Errorw("goroutine panic", "goroutine", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
