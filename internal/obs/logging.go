// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global structured logger used by the service and the
// sync client. It discards everything until InitLogger is called.
var Logger = zerolog.Nop()

// InitLogger initializes the global Logger on stdout. Unknown levels fall
// back to info; format "console" selects the human readable writer, any
// other value JSON.
func InitLogger(level, format string) {
	Logger = NewLogger(os.Stdout, level, format)
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: os.Getenv("NO_COLOR") != ""}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
