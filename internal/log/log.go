package log

import (
	"io"
	"log"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func LevelFromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE", "OFF":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger is a leveled printf logger. A Logger and every Logger derived from
// it with Tag share one level, so SetLevel on the root affects all of them.
type Logger struct {
	logger *log.Logger
	tag    string
	state  *levelState
}

type levelState struct {
	mu    sync.RWMutex
	level Level
}

func New(out io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(out, "", log.Ltime|log.Lmicroseconds),
		state:  &levelState{level: level},
	}
}

// Tag returns a logger that prefixes every line with "[tag] ".
func (l *Logger) Tag(tag string) *Logger {
	return &Logger{logger: l.logger, tag: "[" + tag + "] ", state: l.state}
}

func (l *Logger) enabled(level Level) bool {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()
	return l.state.level <= level
}

func (l *Logger) printf(level Level, format string, v ...interface{}) {
	if !l.enabled(level) {
		return
	}
	l.logger.Printf(level.String()+": "+l.tag+format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.printf(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.printf(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.printf(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.printf(LevelError, format, v...) }

func (l *Logger) SetLevel(level Level) {
	l.state.mu.Lock()
	l.state.level = level
	l.state.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()
	return l.state.level
}

// Discard is a logger that drops everything; handy as a nil-safe default.
func Discard() *Logger { return New(io.Discard, LevelNone) }
