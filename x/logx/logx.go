// Package logx builds the zerolog loggers shared by every service.
package logx

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w, stamped with time and component.
func New(w io.Writer, component string) zerolog.Logger {
	if w == nil {
		return zerolog.Nop()
	}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// Default is New on the platform console.
func Default(component string) zerolog.Logger {
	return New(Console(), component)
}

// ParseLevel maps a config string to a level; unknown values give info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
