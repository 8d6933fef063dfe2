package telemetry

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = newJSONLogger(zapcore.Lock(zapcore.AddSync(stdout{})))
)

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(zapcore.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(zapcore.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(zapcore.ErrorLevel, msg, fields)
}

// Logger returns the underlying zap logger for packages that log with typed fields.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process logger. Tests use it to capture output.
func SetLogger(l *zap.Logger) func() {
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// NewJSON builds a JSON line logger writing to ws.
func NewJSON(ws zapcore.WriteSyncer) *zap.Logger {
	return newJSONLogger(ws)
}

// NewConsole builds a human-readable logger for local development.
func NewConsole(ws zapcore.WriteSyncer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	return zap.New(zapcore.NewCore(enc, ws, zapcore.DebugLevel))
}

// Stdout is a WriteSyncer for the process's standard output.
func Stdout() zapcore.WriteSyncer {
	return zapcore.Lock(zapcore.AddSync(stdout{}))
}

func newJSONLogger(ws zapcore.WriteSyncer) *zap.Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	return zap.New(zapcore.NewCore(enc, ws, zapcore.DebugLevel))
}

func write(level zapcore.Level, msg string, fields map[string]any) {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zf = append(zf, zap.String(k, err.Error()))
			continue
		}
		zf = append(zf, zap.Any(k, v))
	}
	if ce := Logger().Check(level, msg); ce != nil {
		ce.Write(zf...)
	}
}
