// Package logging builds the process logger. The terminal belongs to the
// UI, so logs only ever go to a file and only when debugging is enabled.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a debug-level logger writing to path when debug is set and
// a discarding logger otherwise. The returned closer releases the file.
func New(debug bool, path string) (*slog.Logger, io.Closer, error) {
	if !debug {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h).With("pid", os.Getpid()), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
