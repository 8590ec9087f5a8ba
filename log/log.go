// Package log wraps logrus with a compact formatter and
// context-carried request IDs.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	logcontext "github.com/niloybiswas/toolhost/context"
)

// Logger is the shared logger instance.
var Logger = logrus.New()

// Formatter renders entries as [<time>] [LEVEL] [file:line] <message> [req:<id>].
type Formatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	fmt.Fprintf(b, "[%s] ", entry.Time.Format(f.TimestampFormat))
	fmt.Fprintf(b, "[%s] ", strings.ToUpper(entry.Level.String()))

	if file, line := callerLocation(); file != "" {
		fmt.Fprintf(b, "[%s:%d] ", file, line)
	}

	b.WriteString(entry.Message)

	if requestID, ok := entry.Data["request_id"].(string); ok && requestID != "" {
		fmt.Fprintf(b, " [req:%s]", requestID)
	}
	for key, value := range entry.Data {
		if key != "request_id" {
			fmt.Fprintf(b, " %s=%v", key, value)
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// callerLocation walks the stack past logrus and this package to find the
// real call site.
func callerLocation() (string, int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		switch {
		case strings.Contains(frame.File, "github.com/sirupsen/logrus"),
			strings.HasSuffix(frame.File, "log/log.go"),
			strings.Contains(frame.File, "runtime/"):
			if !more {
				return "", 0
			}
		default:
			return filepath.Base(frame.File), frame.Line
		}
	}
}

func entry(ctx context.Context) *logrus.Entry {
	requestID := ""
	if ctx != nil {
		requestID = logcontext.RequestIDFromContext(ctx)
	}
	return Logger.WithField("request_id", requestID)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

// Info logs a message at info level.
func Info(ctx context.Context, args ...interface{}) {
	entry(ctx).Info(args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debugf(format, args...)
}

// Warnf logs a formatted message at warning level.
func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

// Warn logs a message at warning level.
func Warn(ctx context.Context, args ...interface{}) {
	entry(ctx).Warn(args...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Errorf(format, args...)
}

// Fatalf logs a formatted message at fatal level and exits.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Fatalf(format, args...)
}

// SetLevel sets the global log level.
func SetLevel(level logrus.Level) {
	Logger.SetLevel(level)
}

// SetOutput sets the global log output.
func SetOutput(out io.Writer) {
	Logger.SetOutput(out)
}

// Init configures the logger with the default formatter and level.
func Init() {
	Logger.SetFormatter(&Formatter{TimestampFormat: "2006-01-02 15:04:05"})
	Logger.SetLevel(logrus.InfoLevel)
}

// WithField creates an entry with a predefined field.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}
