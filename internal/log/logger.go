// Package log is a thin structured logging layer over logrus.
//
// The TUI owns the terminal, so the default destination is discarded until
// Configure points the logger at a file (or stderr for batch commands).
package log

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"twinpane/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	std     atomic.Pointer[Logger]
)

func init() {
	std.Store(NewLogger(WithOutput(io.Discard)))
}

// Field is a single structured key/value pair
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logging is the interface components accept when they want a logger injected
type Logging interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	With(fields ...Field) *Logger
}

// Logger wraps a logrus entry so fields accumulate through With
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

var _ Logging = (*Logger)(nil)

// Option configures a Logger
type Option func(*options)

type options struct {
	out   io.Writer
	json  bool
	file  string
	level logrus.Level
}

// WithOutput sets the writer log lines go to
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to JSON lines
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile appends log lines to the named file
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithLevel sets the minimum level; debug output additionally needs SetDebug
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// NewLogger creates a Logger. Output defaults to stderr.
func NewLogger(opts ...Option) *Logger {
	o := &options{out: os.Stderr, level: logrus.DebugLevel}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	base.SetLevel(o.level)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l := &Logger{}
	out := o.out
	if o.file != "" {
		_ = os.MkdirAll(filepath.Dir(o.file), 0755)
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out = f
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches a context to the entry
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// WithError attaches err plus whatever the error type knows about itself
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error()), F("error_kind", errors.KindOf(err).String())}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	return l.With(fields...)
}

func (l *Logger) Debug(args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debug(args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debugf(format, args...)
	}
}

func (l *Logger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// SetDebug turns debug output on or off for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Configure replaces the package logger
func Configure(opts ...Option) {
	if old := std.Swap(NewLogger(opts...)); old != nil {
		_ = old.Close()
	}
}

// Default returns the package logger
func Default() *Logger {
	return std.Load()
}

// LogWithFields returns the package logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return Default().With(fields...)
}

// LogWithError returns the package logger with error details attached
func LogWithError(err error) *Logger {
	return Default().WithError(err)
}

// LogError logs err at error level with a message
func LogError(err error, msg string) {
	Default().WithError(err).Error(msg)
}

func Info(args ...interface{})                  { Default().Info(args...) }
func Infof(format string, args ...interface{})  { Default().Infof(format, args...) }
func Debug(args ...interface{})                 { Default().Debug(args...) }
func Debugf(format string, args ...interface{}) { Default().Debugf(format, args...) }
func Warn(args ...interface{})                  { Default().Warn(args...) }
func Warnf(format string, args ...interface{})  { Default().Warnf(format, args...) }
func Error(args ...interface{})                 { Default().Error(args...) }
func Errorf(format string, args ...interface{}) { Default().Errorf(format, args...) }
