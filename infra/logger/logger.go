package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/pumpplan/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// FileOptions enables a rotating log file next to the standard output.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Options controls the output of loggers built by this package.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "json" or "console". Empty falls back to the APP_ENV
	// variable: console when it is "dev", json otherwise.
	Format string
	Out    io.Writer
	File   FileOptions
}

var (
	mu       sync.Mutex
	defaults = Options{Out: os.Stdout}
	rotating *lumberjack.Logger
)

// Configure sets the options used by New. When a file path is given, logs
// are written to os.Stdout (or o.Out) and to the rotating file.
func Configure(o Options) error {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if _, err := parseLevel(o.Level); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	_ = closeFile()
	if o.File.Path != "" {
		if dir := filepath.Dir(o.File.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		rotating = &lumberjack.Logger{
			Filename:   o.File.Path,
			MaxSize:    o.File.MaxSizeMB,
			MaxBackups: o.File.MaxBackups,
			MaxAge:     o.File.MaxAgeDays,
		}
		o.Out = io.MultiWriter(o.Out, rotating)
	}
	defaults = o
	return nil
}

// Close closes the rotating log file, if any. Loggers created before keep
// working and reopen the file on their next write.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFile()
}

// HasFile reports whether a rotating log file is open.
func HasFile() bool {
	mu.Lock()
	defer mu.Unlock()
	return rotating != nil
}

func closeFile() error {
	if rotating == nil {
		return nil
	}
	err := rotating.Close()
	rotating = nil
	return err
}

// New returns a Logger for the given component using the configured options.
func New(component string) Logger {
	mu.Lock()
	o := defaults
	mu.Unlock()
	return NewZerologLogger(component, o)
}
