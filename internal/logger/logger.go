package logger

import (
	"io"
	"log"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

var levelPrefix = map[LogLevel]string{
	LogLevelError:   "ERROR: ",
	LogLevelWarning: "WARN: ",
	LogLevelInfo:    "",
	LogLevelDebug:   "DEBUG: ",
}

type Logger struct {
	out   *log.Logger
	level LogLevel
	tag   string
}

// NewLogger wraps out with level filtering. A nil out discards
// everything, which tests rely on.
func NewLogger(out *log.Logger, level LogLevel) *Logger {
	if out == nil {
		out = log.New(io.Discard, "", 0)
	}
	return &Logger{out: out, level: level}
}

// WithTag derives a logger whose lines are prefixed with [tag].
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{out: l.out, level: l.level, tag: tag}
}

func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	if l.level < level {
		return
	}
	prefix := levelPrefix[level]
	if l.tag != "" {
		prefix = "[" + l.tag + "] " + prefix
	}
	l.out.Printf(prefix+format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(LogLevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(LogLevelInfo, format, v...)
}

// Printf is an alias for Infof for compatibility
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(LogLevelWarning, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(LogLevelError, format, v...)
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	prefix := "FATAL: "
	if l.tag != "" {
		prefix = "[" + l.tag + "] " + prefix
	}
	l.out.Fatalf(prefix+format, v...)
}
