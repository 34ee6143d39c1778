package log

import (
	"errors"
	"strings"

	charm "github.com/charmbracelet/log"
)

type Level int

const LevelTrace Level = -8
const LevelDebug Level = -4
const LevelInfo Level = 0
const LevelWarn Level = 4
const LevelError Level = 8
const LevelFatal Level = 12

// ParseLevel accepts level names in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, errors.New("invalid log level")
}

func (level Level) String() string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// charm maps a level onto the backend. The backend has no trace level, so
// trace is written as debug.
func (level Level) charm() charm.Level {
	switch {
	case level <= LevelDebug:
		return charm.DebugLevel
	case level <= LevelInfo:
		return charm.InfoLevel
	case level <= LevelWarn:
		return charm.WarnLevel
	case level <= LevelError:
		return charm.ErrorLevel
	default:
		return charm.FatalLevel
	}
}
