// Package logger provides a configurable logger across the module.
//
// The default output is a human readable console writer on stdout; use
// Disable or SetOutput to silence or redirect it.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	lock   sync.RWMutex
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// SetOutput changes the output of the global logger.
func SetOutput(w io.Writer) {
	lock.Lock()
	defer lock.Unlock()
	logger = logger.Output(w)
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(level zerolog.Level) {
	lock.Lock()
	defer lock.Unlock()
	logger = logger.Level(level)
}

// Set replaces the global logger.
func Set(l zerolog.Logger) {
	lock.Lock()
	defer lock.Unlock()
	logger = l
}

// Disable the global logger.
func Disable() {
	Set(zerolog.Nop())
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	lock.RLock()
	defer lock.RUnlock()
	return logger
}
