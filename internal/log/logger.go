// Package log provides structured logging for scenefuse on top of logrus.
package log

import (
	"context"
	"io"
	"os"

	serr "scenefuse/internal/errors"

	"github.com/sirupsen/logrus"
)

var logger = NewLogger()

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger.
type Option func(*logrus.Logger)

// WithOutput directs log output to w.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithJSON switches to JSON formatted output.
func WithJSON() Option {
	return func(l *logrus.Logger) {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	}
}

// WithFile appends log output to the named file. Falls back to stderr if the
// file cannot be opened.
func WithFile(path string) Option {
	return func(l *logrus.Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.SetOutput(os.Stderr)
			l.WithError(err).Warn("could not open log file")
			return
		}
		l.SetOutput(f)
	}
}

// Logger wraps a logrus entry so fields can be chained.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a text logger writing to stderr at info level.
func NewLogger(opts ...Option) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	for _, opt := range opts {
		opt(l)
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Configure replaces the package logger. The debug setting is preserved.
func Configure(opts ...Option) {
	debug := IsDebug()
	logger = NewLogger(opts...)
	SetDebug(debug)
}

// SetDebug toggles debug output on the package logger.
func SetDebug(debug bool) {
	if debug {
		logger.entry.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.entry.Logger.SetLevel(logrus.InfoLevel)
}

// IsDebug reports whether debug output is enabled.
func IsDebug() bool {
	return logger.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

// SetDebug toggles debug output on l.
func (l *Logger) SetDebug(debug bool) {
	if debug {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	l.entry.Logger.SetLevel(logrus.InfoLevel)
}

// With returns a logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(lf)}
}

// WithError returns a logger carrying err and, for application errors, its
// kind and subject.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	fields := []Field{F("error", err.Error())}
	if kind := serr.KindOf(err); kind != serr.Unknown {
		fields = append(fields, F("kind", kind.String()))
	}

	var fileErr *serr.FileError
	var configErr *serr.ConfigError
	var patternErr *serr.PatternError
	var ambErr *serr.AmbiguityError
	switch {
	case serr.As(err, &patternErr):
		fields = append(fields, F("pattern", patternErr.Pattern()))
	case serr.As(err, &ambErr):
		fields = append(fields, F("scene", ambErr.Scene()), F("layer", ambErr.Layer()))
	case serr.As(err, &fileErr):
		fields = append(fields, F("path", fileErr.Path()))
	case serr.As(err, &configErr):
		fields = append(fields, F("param", configErr.Param()))
	}
	return l.With(fields...)
}

// WithContext attaches ctx to the entry. A nil context is ignored.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// LogWithFields returns the package logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger with err attached.
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

func Info(format string, args ...interface{})   { logger.Infof(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Debug(format string, args ...interface{})  { logger.Debugf(format, args...) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Warn(format string, args ...interface{})   { logger.Warnf(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Error(format string, args ...interface{})  { logger.Errorf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
