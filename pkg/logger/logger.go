package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the service.
// - package-level helpers so handlers and stores don't need a logger injected
// - backed by zap; Init(level) and SetFormat(json|text) reconfigure it in place

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	out    zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	format                     = "text"
	base   *zap.Logger
	sugar  *zap.SugaredLogger
)

func init() {
	rebuild()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	s := strings.ToLower(strings.TrimSpace(l))
	switch s {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetFormat switches between "json" and "text" (console) encoding.
func SetFormat(f string) {
	mu.Lock()
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "json":
		format = "json"
	default:
		format = "text"
	}
	mu.Unlock()
	rebuild()
}

func setOutput(w io.Writer) {
	mu.Lock()
	out = zapcore.AddSync(w)
	mu.Unlock()
	rebuild()
}

func rebuild() {
	mu.Lock()
	defer mu.Unlock()
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var enc zapcore.Encoder
	if format == "json" {
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	base = zap.New(zapcore.NewCore(enc, out, level), zap.AddCaller(), zap.AddCallerSkip(1))
	sugar = base.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Zap exposes the underlying structured logger for middleware that logs fields.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-1))
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }

func Infof(format string, v ...interface{}) { current().Infof(format, v...) }

func Warnf(format string, v ...interface{}) { current().Warnf(format, v...) }

func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

// Fatalf logs and exits the process with status 1.
func Fatalf(format string, v ...interface{}) { current().Fatalf(format, v...) }

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) { current().Infoln(v...) }

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { current().Debug(v) }
func Info(v string)  { current().Info(v) }
func Warn(v string)  { current().Warn(v) }
func Error(v string) { current().Error(v) }

// Sync flushes buffered entries; call before exit.
func Sync() error {
	return current().Sync()
}

// LevelString returns the current level as text.
func LevelString() string {
	return level.Level().String()
}
