package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

// NewWithOptions builds a logger; pretty switches to the console writer.
func NewWithOptions(levelStr string, pretty bool, out io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	zl := zerolog.New(out).
		Level(parseLevel(levelStr)).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger tagged with key=value.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Zerolog exposes the underlying logger for middleware that wants structured fields.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

func (l *Logger) Debug(v ...interface{}) {
	l.zl.Debug().Msg(join(v))
}

func (l *Logger) Info(v ...interface{}) {
	l.zl.Info().Msg(join(v))
}

func (l *Logger) Warn(v ...interface{}) {
	l.zl.Warn().Msg(join(v))
}

func (l *Logger) Error(v ...interface{}) {
	l.zl.Error().Msg(join(v))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.zl.WithLevel(zerolog.FatalLevel).Msg(join(v))
	os.Exit(1)
}

// join mirrors fmt.Sprintln spacing without the trailing newline, so
// log.Error("failed to load:", err) reads naturally.
func join(v []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}
