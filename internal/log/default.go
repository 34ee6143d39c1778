package log

import (
	"os"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewText(os.Stderr))
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the default logger.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Info level message.
func Info(t any, msg string, v ...any) {
	Default().log(t, msg, LevelInfo, v...)
}

// Error level message.
func Error(t any, msg string, v ...any) {
	Default().log(t, msg, LevelError, v...)
}
