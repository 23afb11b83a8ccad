// Package logging builds the process logger: a colored console handler on
// stderr and, optionally, a rotating debug log file.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls Setup.
type Options struct {
	Verbose bool
	Brief   bool
	// File, when set, receives every record at debug level.
	File string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// ErrExclusive is returned when both Verbose and Brief are set.
var ErrExclusive = errors.New("verbose and brief are mutually exclusive")

// Level maps the flags onto a console level.
func (o Options) Level() slog.Level {
	switch {
	case o.Verbose:
		return slog.LevelDebug
	case o.Brief:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Setup returns a logger and a function that closes the log file, if any.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	if opts.Verbose && opts.Brief {
		return nil, nil, ErrExclusive
	}

	logW := opts.Writer
	if logW == nil {
		logW = os.Stderr
	}

	handlers := []slog.Handler{
		tint.NewHandler(logW, &tint.Options{
			Level:      opts.Level(),
			TimeFormat: time.StampMilli,
			NoColor:    !isTerminal(logW),
		}),
	}

	closer := func() error { return nil }
	if opts.File != "" {
		logFile := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // MB
			MaxBackups: 4,
			MaxAge:     30, // days
			Compress:   true,
		}
		handlers = append(handlers, slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		closer = logFile.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
