package logger

import (
	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// Init builds the process-wide logger. Must be called once from main before
// any other package logs.
func Init() {
	zl, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = zl.Sugar()
}

// InitDevelopment swaps in a human-readable console logger, used by tests.
func InitDevelopment() {
	zl, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = zl.Sugar()
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func ensure() *zap.SugaredLogger {
	if log == nil {
		Init()
	}
	return log
}

// Info logs a message with optional alternating key/value pairs.
func Info(msg string, kv ...interface{}) {
	ensure().Infow(msg, kv...)
}

func Infof(format string, v ...interface{}) {
	ensure().Infof(format, v...)
}

func Error(msg string, kv ...interface{}) {
	ensure().Errorw(msg, kv...)
}

func Errorf(format string, v ...interface{}) {
	ensure().Errorf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	ensure().Debugw(msg, kv...)
}

func Debugf(format string, v ...interface{}) {
	ensure().Debugf(format, v...)
}

func Warn(msg string, kv ...interface{}) {
	ensure().Warnw(msg, kv...)
}

func Fatal(msg string, kv ...interface{}) {
	ensure().Fatalw(msg, kv...)
}

func Fatalf(format string, v ...interface{}) {
	ensure().Fatalf(format, v...)
}
