package middleware

import (
	"fmt"
	"io"

	gommon "github.com/labstack/gommon/log"

	"git.backbone/corpix/greeter/pkg/log"
)

// Logger adapts log.Logger to the echo.Logger interface.
type Logger struct {
	log.Logger
	prefix string
}

var levels = map[gommon.Lvl]log.Level{
	gommon.DEBUG: log.DebugLevel,
	gommon.INFO:  log.InfoLevel,
	gommon.WARN:  log.WarnLevel,
	gommon.ERROR: log.ErrorLevel,
	gommon.OFF:   log.Disabled,
}

func (l *Logger) Output() io.Writer       { return l.Logger }
func (l *Logger) SetOutput(w io.Writer)   { l.Logger = l.Logger.Output(w) }
func (l *Logger) Prefix() string          { return l.prefix }
func (l *Logger) SetPrefix(prefix string) { l.prefix = prefix }
func (l *Logger) SetHeader(string)        {}

func (l *Logger) Level() gommon.Lvl {
	switch l.Logger.GetLevel() {
	case log.TraceLevel, log.DebugLevel:
		return gommon.DEBUG
	case log.InfoLevel:
		return gommon.INFO
	case log.WarnLevel:
		return gommon.WARN
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return gommon.ERROR
	default:
		return gommon.OFF
	}
}

func (l *Logger) SetLevel(v gommon.Lvl) {
	if level, ok := levels[v]; ok {
		l.Logger = l.Logger.Level(level)
	}
}

func (l *Logger) msg(e *log.Event, i ...interface{}) {
	if l.prefix != "" {
		e = e.Str("prefix", l.prefix)
	}
	e.Msg(fmt.Sprint(i...))
}

func (l *Logger) msgf(e *log.Event, format string, args ...interface{}) {
	if l.prefix != "" {
		e = e.Str("prefix", l.prefix)
	}
	e.Msgf(format, args...)
}

func (l *Logger) msgj(e *log.Event, j gommon.JSON) {
	if l.prefix != "" {
		e = e.Str("prefix", l.prefix)
	}
	e.Fields(map[string]interface{}(j)).Send()
}

func (l *Logger) Print(i ...interface{})                    { l.msg(l.Logger.Log(), i...) }
func (l *Logger) Printf(format string, args ...interface{}) { l.msgf(l.Logger.Log(), format, args...) }
func (l *Logger) Printj(j gommon.JSON)                      { l.msgj(l.Logger.Log(), j) }

func (l *Logger) Debug(i ...interface{}) { l.msg(l.Logger.Debug(), i...) }
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.msgf(l.Logger.Debug(), format, args...)
}
func (l *Logger) Debugj(j gommon.JSON) { l.msgj(l.Logger.Debug(), j) }

func (l *Logger) Info(i ...interface{})                    { l.msg(l.Logger.Info(), i...) }
func (l *Logger) Infof(format string, args ...interface{}) { l.msgf(l.Logger.Info(), format, args...) }
func (l *Logger) Infoj(j gommon.JSON)                      { l.msgj(l.Logger.Info(), j) }

func (l *Logger) Warn(i ...interface{})                    { l.msg(l.Logger.Warn(), i...) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.msgf(l.Logger.Warn(), format, args...) }
func (l *Logger) Warnj(j gommon.JSON)                      { l.msgj(l.Logger.Warn(), j) }

func (l *Logger) Error(i ...interface{}) { l.msg(l.Logger.Error(), i...) }
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.msgf(l.Logger.Error(), format, args...)
}
func (l *Logger) Errorj(j gommon.JSON) { l.msgj(l.Logger.Error(), j) }

func (l *Logger) Fatal(i ...interface{}) { l.msg(l.Logger.Fatal(), i...) }
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.msgf(l.Logger.Fatal(), format, args...)
}
func (l *Logger) Fatalj(j gommon.JSON) { l.msgj(l.Logger.Fatal(), j) }

func (l *Logger) Panic(i ...interface{}) { l.msg(l.Logger.Panic(), i...) }
func (l *Logger) Panicf(format string, args ...interface{}) {
	l.msgf(l.Logger.Panic(), format, args...)
}
func (l *Logger) Panicj(j gommon.JSON) { l.msgj(l.Logger.Panic(), j) }
