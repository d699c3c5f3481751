// Package output provides terminal output utilities.
package output

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logOut receives log and detail output.
var logOut io.Writer = os.Stderr

// logger is the package-level logger. Use the helpers or a scoped logger.
var logger = log.NewWithOptions(logOut, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

// LogConfig controls logger setup.
type LogConfig struct {
	// Verbose enables debug level and caller reporting.
	Verbose bool

	// Timestamps toggles timestamps. nil means on.
	Timestamps *bool
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// SetupLogging configures the package logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if cfg.Timestamps != nil && !cfg.Verbose {
		timestamps = *cfg.Timestamps
	}

	logger = log.NewWithOptions(logOut, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// SetOutput redirects the logger.
func SetOutput(w io.Writer) {
	logOut = w
	logger.SetOutput(w)
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// RouteLogger returns a logger prefixed with the styled route name.
func RouteLogger(route string) *log.Logger {
	return logger.WithPrefix(StyleDim.Render("r:") + StyleNoun.Render(route))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Details prints multi-line text to the log output without a log prefix.
func Details(text string) {
	_, _ = io.WriteString(logOut, strings.TrimRight(text, "\n")+"\n")
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	_, _ = os.Stdout.WriteString(msg + "\n")
}
