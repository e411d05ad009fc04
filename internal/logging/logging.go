package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Info is the default level;
// debug lowers it to Debug and adds caller information.
func New(w io.Writer, debug bool) *zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !IsTerminal(w),
		TimeFormat: time.TimeOnly,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(console).Level(level).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	return &logger
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
