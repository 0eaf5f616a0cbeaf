package log

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Log is the structured logger shared by every layer of the service.
type Log struct {
	AppName string
	Logger  *logrus.Logger
}

var logger Log

// InitLogger initialize the process logger from Viper
func InitLogger(v *viper.Viper) {
	logger = NewLog(v.GetString("app.name"), v.GetString("log.level"), os.Stdout)
}

// GetLogger return the logger built by InitLogger
func GetLogger() Log {
	return logger
}

// NewLog builds a logger writing JSON lines to out.
func NewLog(appName, level string, out io.Writer) Log {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return Log{AppName: appName, Logger: l}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() Log {
	return NewLog("test", "panic", io.Discard)
}

func (l Log) entry(context, scope, meta string, skip int) *logrus.Entry {
	_, file, line, _ := runtime.Caller(skip)
	return l.Logger.WithFields(logrus.Fields{
		"service": l.AppName,
		"context": context,
		"scope":   scope,
		"meta":    meta,
		"file":    file,
		"line":    line,
	})
}

// -----------------------------
// Info
func (l Log) Info(context, message, scope, meta string) {
	if l.Logger == nil {
		return
	}
	l.entry(context, scope, meta, 2).Info(message)
}

// -----------------------------
// Warn
func (l Log) Warn(context, message, scope, meta string) {
	if l.Logger == nil {
		return
	}
	l.entry(context, scope, meta, 2).Warn(message)
}

// -----------------------------
// Error
func (l Log) Error(context, message, scope, meta string) {
	if l.Logger == nil {
		return
	}
	_, file2, line2, _ := runtime.Caller(2)
	l.entry(context, scope, meta, 2).WithFields(logrus.Fields{
		"file2": file2,
		"line2": line2,
	}).Error(message)
}

// -----------------------------
// Slow
func (l Log) Slow(context, message, scope, meta string) {
	if l.Logger == nil {
		return
	}
	l.entry(context, scope, meta, 3).Info("[SLOW] " + message)
}
