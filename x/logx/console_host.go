//go:build !rp2040 && !rp2350

package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Console is a human-readable writer on stderr.
func Console() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

// WithFile tees the console into an append-only log file.
func WithFile(path string) (io.Writer, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return zerolog.MultiLevelWriter(Console(), f), f, nil
}
