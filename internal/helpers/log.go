package helpers

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type Logger interface {
	Println(v ...any)
	Printf(format string, v ...any)
	Print(v ...any)
}

// ZapLogger adapts a sugared zap logger to Logger. Everything is logged at
// info level; zap writes to stderr so stdout stays free for protocol output.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger.Sugar()}
}

func (l *ZapLogger) Println(v ...any) {
	l.sugar.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *ZapLogger) Printf(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *ZapLogger) Print(v ...any) {
	l.sugar.Info(v...)
}

func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

func newDefaultZap() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

var DefaultLogger Logger = NewZapLogger(newDefaultZap())

type _silentLogger struct{}

func (l *_silentLogger) Println(v ...any)               {}
func (l *_silentLogger) Printf(format string, v ...any) {}
func (l *_silentLogger) Print(v ...any)                 {}

var SilentLogger Logger = &_silentLogger{}

// FuncLogger forwards every formatted line to a callback, e.g. for tests or
// for sending "info string" lines over UCI.
type FuncLogger struct {
	print func(string)
}

var _ Logger = (*FuncLogger)(nil)

func NewFuncLogger(print func(string)) *FuncLogger {
	return &FuncLogger{print}
}

func (l *FuncLogger) Println(v ...any) {
	l.print(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *FuncLogger) Printf(format string, v ...any) {
	l.print(fmt.Sprintf(format, v...))
}

func (l *FuncLogger) Print(v ...any) {
	l.print(fmt.Sprint(v...))
}
