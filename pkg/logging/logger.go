// Package logging provides the structured logger used throughout the ATPG
// pipeline: a zerolog backend with the phase-specific helpers
// (Circuit/Algorithm/Decision/Backtrack/Implication/Frontier) the FAN engine
// uses to narrate its search, plus indent tracking for nested search traces.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's level set but keeps call sites decoupled from the
// zerolog import.
type Level int

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case ErrorLevel:
		return zerolog.ErrorLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case DebugLevel:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Logger wraps a zerolog.Logger with indentation and the ATPG-specific
// phase helpers. It is safe for concurrent use for logging calls (zerolog
// itself is), but Indent/Outdent are meant for a single call stack and are
// not synchronized — callers running per-unit searches concurrently should
// use one Logger per goroutine (see Logger.Sub).
type Logger struct {
	zl         zerolog.Logger
	indent     int
	indentSize int
}

// New creates a logger writing to w (os.Stdout if nil) at the given level.
func New(level Level, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		With().Timestamp().Logger().Level(level.zerolog())
	return &Logger{zl: zl, indentSize: 2}
}

// Sub returns a fresh logger sharing output/level but with its own
// indentation counter, for use in an independently-running goroutine.
func (l *Logger) Sub() *Logger {
	return &Logger{zl: l.zl, indentSize: l.indentSize}
}

func (l *Logger) Indent()  { l.indent++ }
func (l *Logger) Outdent() {
	if l.indent > 0 {
		l.indent--
	}
}

func (l *Logger) pad(format string) string {
	if l.indent == 0 {
		return format
	}
	return strings.Repeat(" ", l.indent*l.indentSize) + format
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(l.pad(format), args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.zl.Warn().Msgf(l.pad(format), args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(l.pad(format), args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(l.pad(format), args...)
}

func (l *Logger) Trace(format string, args ...interface{}) {
	l.zl.Trace().Msgf(l.pad(format), args...)
}

// Circuit logs circuit-state changes (gate/line assignment).
func (l *Logger) Circuit(format string, args ...interface{}) {
	l.zl.Debug().Str("phase", "circuit").Msgf(l.pad(format), args...)
}

// Algorithm logs top-level FAN engine progress.
func (l *Logger) Algorithm(format string, args ...interface{}) {
	l.zl.Debug().Str("phase", "algorithm").Msgf(l.pad(format), args...)
}

// Decision logs a decision-tree branch choice.
func (l *Logger) Decision(format string, args ...interface{}) {
	l.zl.Debug().Str("phase", "decision").Msgf(l.pad(format), args...)
}

// Backtrack logs a backtrack event.
func (l *Logger) Backtrack(format string, args ...interface{}) {
	l.zl.Debug().Str("phase", "backtrack").Msgf(l.pad(format), args...)
}

// Implication logs forward/backward implication steps.
func (l *Logger) Implication(format string, args ...interface{}) {
	l.zl.Trace().Str("phase", "implication").Msgf(l.pad(format), args...)
}

// Frontier logs D-frontier/J-frontier updates.
func (l *Logger) Frontier(format string, args ...interface{}) {
	l.zl.Trace().Str("phase", "frontier").Msgf(l.pad(format), args...)
}

// Nop returns a logger discarding all output, for tests and hot loops
// (PPSFP) where narration would dominate runtime.
func Nop() *Logger {
	return New(ErrorLevel, io.Discard)
}

// Default is a package-level convenience logger at info level.
var Default = New(InfoLevel, os.Stdout)
