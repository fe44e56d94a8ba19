package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger: human readable in development,
// JSON lines in production
func New(env, level string) zerolog.Logger {
	return NewWithWriter(os.Stderr, env, level)
}

// NewWithWriter is New writing to w
func NewWithWriter(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(env, "production") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
