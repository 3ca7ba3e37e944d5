package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(io.Discard, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.00",
	Level:           log.DebugLevel,
})

var enabled bool

// SetOutput sets the log output destination
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	enabled = w != io.Discard
}

// SetLevel adjusts the minimum level written to the output
func SetLevel(level log.Level) {
	logger.SetLevel(level)
}

// Enabled returns true if logging is enabled
func Enabled() bool {
	return enabled
}

// Debug writes a debug message with optional key/value pairs
func Debug(msg string, kv ...any) {
	logger.Debug(msg, kv...)
}

// Info writes an info message with optional key/value pairs
func Info(msg string, kv ...any) {
	logger.Info(msg, kv...)
}

// Warn writes a warning message with optional key/value pairs
func Warn(msg string, kv ...any) {
	logger.Warn(msg, kv...)
}

// Error writes an error message with optional key/value pairs
func Error(msg string, kv ...any) {
	logger.Error(msg, kv...)
}
