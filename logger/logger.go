package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel selects the minimum severity that gets emitted.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Init configures the process-wide logger. Safe to call more than once;
// later calls only adjust the level.
func Init(level LogLevel) {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	})
	log.SetLevel(toLogrus(level))
}

// GetLogger returns the underlying logrus logger, or nil if Init has not
// run yet.
func GetLogger() *logrus.Logger {
	return log
}

func toLogrus(level LogLevel) logrus.Level {
	switch level {
	case DEBUG:
		return logrus.DebugLevel
	case INFO:
		return logrus.InfoLevel
	case WARNING:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	case FATAL:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func ensure() *logrus.Logger {
	if log == nil {
		Init(INFO)
	}
	return log
}

func Debug(args ...interface{})                 { ensure().Debug(args...) }
func Debugf(format string, args ...interface{}) { ensure().Debugf(format, args...) }
func Info(args ...interface{})                  { ensure().Info(args...) }
func Infof(format string, args ...interface{})  { ensure().Infof(format, args...) }
func Warning(args ...interface{})               { ensure().Warn(args...) }
func Warningf(format string, args ...interface{}) {
	ensure().Warnf(format, args...)
}
func Error(args ...interface{})                 { ensure().Error(args...) }
func Errorf(format string, args ...interface{}) { ensure().Errorf(format, args...) }
func Fatal(args ...interface{})                 { ensure().Fatal(args...) }
func Fatalf(format string, args ...interface{}) { ensure().Fatalf(format, args...) }

// WithFields forwards to logrus structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return ensure().WithFields(logrus.Fields(fields))
}
