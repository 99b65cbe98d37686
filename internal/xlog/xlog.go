// Package xlog provides the engine's internal leveled logger.
//
// The storage engine treats malformed documents, soft (policy-less)
// edges and best-effort filesystem failures as log-and-continue
// conditions rather than hard errors (see engine.Engine). This package
// gives every call site a single place to do that consistently, over a
// single shared logrus.Logger instance.
package xlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is a logging severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
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
	default:
		return "UNKNOWN"
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

var (
	mu  sync.Mutex
	log = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(LevelInfo.logrusLevel())
	return l
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(l.logrusLevel())
}

// SetOutput redirects log output, e.g. to a CLI's --log-file.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Debug logs a debug-level message if the current level permits it.
func Debug(format string, args ...any) { logAt(LevelDebug, format, args...) }

// Info logs an info-level message if the current level permits it.
func Info(format string, args ...any) { logAt(LevelInfo, format, args...) }

// Warn logs a warn-level message if the current level permits it.
func Warn(format string, args ...any) { logAt(LevelWarn, format, args...) }

// Error logs an error-level message if the current level permits it.
func Error(format string, args ...any) { logAt(LevelError, format, args...) }

func logAt(l Level, format string, args ...any) {
	mu.Lock()
	logger := log
	mu.Unlock()
	logger.Log(l.logrusLevel(), fmt.Sprintf(format, args...))
}
