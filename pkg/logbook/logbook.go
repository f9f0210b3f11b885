// Package logbook wires up the process-wide logger: a human-readable
// console stream on stderr plus an append-only file under the config
// directory. The file is the only artifact the bridge persists; every
// significant decision and every raw error payload from a remote service
// ends up there as a timestamped line.
package logbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Book is the run log. It embeds the logger so callers use the zerolog API
// directly and close the underlying file when the run ends.
type Book struct {
	zerolog.Logger
	file *os.File
}

// Open appends to the log file at path, creating it (and its directory)
// when missing.
func Open(path string, verbose bool) (*Book, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := newLogger(zerolog.MultiLevelWriter(console, f), verbose)
	return &Book{Logger: logger, file: f}, nil
}

// New builds a logger writing to w only. Tests use this to capture output.
func New(w io.Writer) zerolog.Logger {
	return newLogger(w, true)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func (b *Book) Close() error {
	return b.file.Close()
}
