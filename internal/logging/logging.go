package logging

import (
	"log"
	"os"
)

// Level represents different logging verbosity levels
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// ParseLevel maps a level name to a Level, defaulting to INFO.
func ParseLevel(name string) Level {
	switch name {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	case "TRACE":
		return LevelTrace
	}
	return LevelInfo
}

// Logger provides leveled logging. Callers construct one logger at
// startup and pass it to each component; there is no package-global
// instance.
type Logger struct {
	level  Level
	prefix string
}

// New creates a logger with the specified level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

// FromEnv creates a logger whose level is read from LOG_LEVEL.
func FromEnv() *Logger {
	return New(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Named returns a logger that tags every line with a component name.
// The name replaces any existing tag rather than nesting under it.
func (l *Logger) Named(name string) *Logger {
	return &Logger{level: l.level, prefix: "[" + name + "] "}
}

// Level returns the current log level.
func (l *Logger) Level() Level {
	return l.level
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LevelError {
		log.Printf("[ERROR] "+l.prefix+format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LevelWarn {
		log.Printf("[WARN] "+l.prefix+format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		log.Printf("[INFO] "+l.prefix+format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		log.Printf("[DEBUG] "+l.prefix+format, args...)
	}
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		log.Printf("[TRACE] "+l.prefix+format, args...)
	}
}
