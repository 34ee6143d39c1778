// Package log is the levelled logger used by the stress runner and the
// command line tool.
package log

import (
	"io"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

type Logger struct {
	charm *charm.Logger
	level atomic.Int64
}

type Tag interface {
	String() string
}

func NewText(w io.Writer) *Logger {
	return newLogger(w, charm.TextFormatter)
}

func NewJson(w io.Writer) *Logger {
	return newLogger(w, charm.JSONFormatter)
}

func newLogger(w io.Writer, f charm.Formatter) *Logger {
	l := &Logger{
		charm: charm.NewWithOptions(w, charm.Options{
			Level:           charm.DebugLevel,
			ReportTimestamp: true,
			Formatter:       f,
		}),
	}
	l.level.Store(int64(LevelInfo))
	return l
}

// SetLevel sets the logging level and returns the previous level.
func (l *Logger) SetLevel(level Level) (prev Level) {
	return Level(l.level.Swap(int64(level)))
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// HasTrace returns if trace level is enabled.
func (l *Logger) HasTrace() bool {
	return l.Level() <= LevelTrace
}

func (l *Logger) log(t any, msg string, level Level, v ...any) {
	if l.Level() > level {
		return
	}

	if t != nil {
		if tag, ok := t.(Tag); ok {
			v = append([]any{"tag", tag.String()}, v...)
		} else {
			v = append([]any{"tag", t}, v...)
		}
	}

	l.charm.Log(level.charm(), msg, v...)
}

// Trace level message.
func (l *Logger) Trace(t any, msg string, v ...any) {
	l.log(t, msg, LevelTrace, v...)
}

// Debug level message.
func (l *Logger) Debug(t any, msg string, v ...any) {
	l.log(t, msg, LevelDebug, v...)
}

// Info level message.
func (l *Logger) Info(t any, msg string, v ...any) {
	l.log(t, msg, LevelInfo, v...)
}

// Warn level message.
func (l *Logger) Warn(t any, msg string, v ...any) {
	l.log(t, msg, LevelWarn, v...)
}

// Error level message.
func (l *Logger) Error(t any, msg string, v ...any) {
	l.log(t, msg, LevelError, v...)
}
