package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type BaseLogger struct {
	mu     sync.Mutex
	prefix string
	zl     *zap.SugaredLogger
}

// NewLogger builds a prefixed logger writing to the given writer.
// A nil writer falls back to stderr.
func NewLogger(writer io.Writer, prefix string) *BaseLogger {
	if writer == nil {
		writer = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(writer),
		zapcore.InfoLevel,
	)
	return &BaseLogger{
		prefix: prefix,
		zl:     zap.New(core).Sugar(),
	}
}

// NewZapLogger wraps an already configured zap logger, e.g. the one the CLI
// builds from its --verbose flag.
func NewZapLogger(zl *zap.Logger, prefix string) *BaseLogger {
	return &BaseLogger{prefix: prefix, zl: zl.Sugar()}
}

func (l *BaseLogger) Log(format string, v ...interface{}) {
	l.mu.Lock()
	prefix := l.prefix
	l.mu.Unlock()
	l.zl.Infof(prefix+" "+format, v...)
}

func (l *BaseLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	prefix := l.prefix
	l.mu.Unlock()
	l.zl.Errorf(prefix+" "+format, v...)
}

func (l *BaseLogger) FatalLog(format string, v ...interface{}) {
	l.mu.Lock()
	prefix := l.prefix
	l.mu.Unlock()
	l.zl.Fatalf(prefix+" "+format, v...)
}

func (l *BaseLogger) WithPrefix(extraPrefix string) *BaseLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &BaseLogger{
		prefix: l.prefix + " " + extraPrefix,
		zl:     l.zl,
	}
}

func (l *BaseLogger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

// Sync flushes buffered log entries. Callers defer it on shutdown.
func (l *BaseLogger) Sync() error {
	return l.zl.Sync()
}
