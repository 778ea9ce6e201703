// Package logger provides leveled logging for BucketFS components.
//
// The package-level helpers keep printf-style call sites; structured events
// (see pkg/fs) go through Log() to attach typed fields. Output defaults to a
// human-readable console format on stdout and can be switched to JSON for
// log aggregation.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	format           = "text"
	level            = zerolog.InfoLevel
	log              = newLogger()
)

func newLogger() zerolog.Logger {
	var w io.Writer = output
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func rebuild() {
	log = newLogger()
}

// SetLevel sets the minimum level to output.
// Valid values: TRACE, DEBUG, INFO, WARN, ERROR (case-insensitive).
// Unknown values are ignored.
func SetLevel(l string) {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToUpper(l) {
	case "TRACE":
		level = zerolog.TraceLevel
	case "DEBUG":
		level = zerolog.DebugLevel
	case "INFO":
		level = zerolog.InfoLevel
	case "WARN":
		level = zerolog.WarnLevel
	case "ERROR":
		level = zerolog.ErrorLevel
	default:
		return
	}
	rebuild()
}

// SetFormat selects the output format: "text" or "json".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()

	switch f {
	case "text", "json":
		format = f
		rebuild()
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	rebuild()
}

// Log returns the underlying zerolog logger for structured events. The
// returned pointer addresses a private copy, so a concurrent
// SetLevel/SetFormat/SetOutput cannot race with an in-flight event chain.
func Log() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Trace(format string, v ...any) {
	Log().Trace().Msgf(format, v...)
}

func Debug(format string, v ...any) {
	Log().Debug().Msgf(format, v...)
}

func Info(format string, v ...any) {
	Log().Info().Msgf(format, v...)
}

func Warn(format string, v ...any) {
	Log().Warn().Msgf(format, v...)
}

func Error(format string, v ...any) {
	Log().Error().Msgf(format, v...)
}
