package log

import (
	"io"
	stdlog "log"
	"os"

	isatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"git.backbone/corpix/greeter/pkg/errors"
)

type (
	Logger = zerolog.Logger
	Event  = zerolog.Event
	Level  = zerolog.Level
)

const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
	PanicLevel = zerolog.PanicLevel
	Disabled   = zerolog.Disabled
)

var Output io.Writer = os.Stderr

func ParseLevel(level string) (Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return l, errors.Wrapf(err, "failed to parse log level %q", level)
	}
	return l, nil
}

// Std adapts l to the standard library logger for libraries which want one.
func Std(l Logger) *stdlog.Logger {
	return stdlog.New(l, "", 0)
}

func Nop() Logger {
	return zerolog.Nop()
}

func CreateWithWriter(c Config, w io.Writer) (Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return Nop(), err
	}

	switch c.Format {
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w}
	case FormatAuto, "":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			w = zerolog.ConsoleWriter{Out: w}
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func Create(c Config) (Logger, error) {
	return CreateWithWriter(c, Output)
}
