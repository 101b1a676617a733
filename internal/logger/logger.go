package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	GlobalLogLevel LogLevel = LogLevelInfo

	mu   sync.RWMutex
	base = newZap(zapcore.InfoLevel)
)

type Log struct {
	level  LogLevel
	err    error
	fields []zap.Field
}

// Init sets the process-wide level and rebuilds the underlying zap logger.
func Init(level string) {
	lvl := ParseLevel(level)

	mu.Lock()
	defer mu.Unlock()
	GlobalLogLevel = lvl
	base = newZap(lvl.zapLevel())
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func New() *Log {
	mu.RLock()
	defer mu.RUnlock()
	return &Log{
		level: GlobalLogLevel,
	}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, err: err, fields: l.fields}
}

// With attaches structured fields to every subsequent entry.
func (l *Log) With(fields ...zap.Field) *Log {
	merged := make([]zap.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Log{level: l.level, err: l.err, fields: merged}
}

func (l *Log) Debug(msg string) {
	l.write(LogLevelDebug, msg)
}

func (l *Log) Info(msg string) {
	l.write(LogLevelInfo, msg)
}

func (l *Log) Warn(msg string) {
	l.write(LogLevelWarn, msg)
}

func (l *Log) Error(msg string) {
	l.write(LogLevelError, msg)
}

// Enabled reports whether an entry at level would be written.
func (l *Log) Enabled(level LogLevel) bool {
	return level.zapLevel() >= l.level.zapLevel()
}

func (l *Log) write(level LogLevel, msg string) {
	if !l.Enabled(level) {
		return
	}

	fields := l.fields
	if l.err != nil {
		fields = append(append([]zap.Field{}, fields...), zap.Error(l.err))
	}

	mu.RLock()
	z := base
	mu.RUnlock()

	if ce := z.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(fields...)
	}
}

// ParseLevel falls back to info for unknown values.
func ParseLevel(level string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newZap(level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)

	// per-Log levels are checked in write; the core only drops below the global level
	return zap.New(core, zap.IncreaseLevel(level))
}
