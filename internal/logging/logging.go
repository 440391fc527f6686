// Package logging provides leveled logging on top of the standard log
// package, with optional rotation to a log file.
//
// Messages go to stderr unless a log file is configured. Stdout is never
// used because it carries the MCP protocol stream.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
)

// Level orders log messages by severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
)

// ParseLevel maps "debug", "info", "warning" and "error" to a Level.
// Anything else is InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warning", "warn":
		return WarningLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config describes where and how much to log.
type Config struct {
	Logfile string
	MaxSize int    `toml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age"`  // days
	Level   string `toml:"level"`
}

var (
	mu     sync.Mutex
	level  = InfoLevel
	rotate *lumberjack.Logger
)

// Setup applies c to the package logger. A nil config or empty Logfile
// logs to stderr.
func Setup(c *Config) {
	mu.Lock()
	defer mu.Unlock()

	if rotate != nil {
		rotate.Close()
		rotate = nil
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var out io.Writer = os.Stderr
	if c != nil && c.Logfile != "" {
		rotate = &lumberjack.Logger{
			Filename: c.Logfile,
			MaxSize:  c.MaxSize,
			MaxAge:   c.MaxAge,
		}
		out = rotate
	}
	log.SetOutput(out)

	if c != nil && c.Level != "" {
		level = ParseLevel(c.Level)
	}
}

// SetLevel changes the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

func enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l >= level
}

// Debugf logs at DEBUG level.
func Debugf(format string, args ...interface{}) {
	if enabled(DebugLevel) {
		log.Output(2, fmt.Sprintf(" DEBUG "+format, args...))
	}
}

// Infof logs at INFO level.
func Infof(format string, args ...interface{}) {
	if enabled(InfoLevel) {
		log.Output(2, fmt.Sprintf(" INFO "+format, args...))
	}
}

// Warningf logs at WARNING level.
func Warningf(format string, args ...interface{}) {
	if enabled(WarningLevel) {
		log.Output(2, fmt.Sprintf(" WARNING "+format, args...))
	}
}

// Errorf logs at ERROR level.
func Errorf(format string, args ...interface{}) {
	if enabled(ErrorLevel) {
		log.Output(2, fmt.Sprintf(" ERROR "+format, args...))
	}
}

// Shutdown closes the log file, if any.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if rotate != nil {
		log.SetOutput(os.Stderr)
		rotate.Close()
		rotate = nil
	}
}
