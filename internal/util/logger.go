package util

import (
	"io"
	"os"
	"strings"
	"time"

	stdlog "log"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// verbosity 1 (error) .. 5 (trace) as used by the cli
var verboseLevels = [5]LogLevel{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}

// LevelFromVerbose maps a cli verbosity between 1 (error) and 5 (trace) to a
// LogLevel. Out of range values are clamped.
func LevelFromVerbose(verbose int) LogLevel {
	verbose = min(max(verbose, 1), 5)
	return verboseLevels[verbose-1]
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitializeLogger sets up the global logger writing to w (stderr when nil).
// The REPL owns stdout so logs stay off it by default.
func InitializeLogger(level LogLevel, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerologLevel(level))

	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}

	ctx := zerolog.New(output).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// zerologWriter wraps zerolog to implement io.Writer for stdlog
type zerologWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	// Remove stdlog prefix if present (timestamp and flags)
	if idx := strings.LastIndex(msg, ": "); idx != -1 && idx < len(msg)-2 && strings.HasPrefix(msg, "20") {
		msg = msg[idx+2:]
	}
	w.logger.WithLevel(w.level).Msg(msg)

	return len(p), nil
}

// NewLogLogger returns a stdlog.Logger that routes to zerolog for libraries
// that only accept a *log.Logger (chi request logging, go-fuse debug output).
func NewLogLogger(component string, lvl LogLevel) *stdlog.Logger {
	logger := log.With().Str("component", component).Logger()
	writer := zerologWriter{logger: logger, level: zerologLevel(lvl)}

	return stdlog.New(writer, "", 0)
}
