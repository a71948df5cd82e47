package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Field is an alias so callers never import zap directly.
type Field = zap.Field

type LoggerI interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	DPanic(msg string, fields ...Field)
	Panic(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) LoggerI
}

type loggerImpl struct {
	zap *zap.Logger
}

func NewLogger(namespace string, level string) LoggerI {
	if level == "" {
		level = LevelInfo
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(parseLevel(level)),
	)

	return &loggerImpl{
		zap: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(namespace),
	}
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() LoggerI {
	return &loggerImpl{zap: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, fields ...Field)  { l.zap.Debug(msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...Field)   { l.zap.Info(msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...Field)   { l.zap.Warn(msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...Field)  { l.zap.Error(msg, fields...) }
func (l *loggerImpl) DPanic(msg string, fields ...Field) { l.zap.DPanic(msg, fields...) }
func (l *loggerImpl) Panic(msg string, fields ...Field)  { l.zap.Panic(msg, fields...) }
func (l *loggerImpl) Fatal(msg string, fields ...Field)  { l.zap.Fatal(msg, fields...) }

func (l *loggerImpl) With(fields ...Field) LoggerI {
	return &loggerImpl{zap: l.zap.With(fields...)}
}

// Cleanup flushes buffered log entries.
func Cleanup(l LoggerI) error {
	if impl, ok := l.(*loggerImpl); ok {
		return impl.zap.Sync()
	}
	return nil
}

func Any(key string, val any) Field {
	return zap.Any(key, val)
}

func String(key, val string) Field {
	return zap.String(key, val)
}

func Int(key string, val int) Field {
	return zap.Int(key, val)
}

func Int64(key string, val int64) Field {
	return zap.Int64(key, val)
}

func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

func Error(err error) Field {
	return zap.Error(err)
}
