// Package log is a small leveled logging facade in the shape the teacher
// repo vendors as its own "log" subpackage: a Logger interface, a filtering
// decorator, and a Helper with printf-style level methods. It exists so the
// rest of the module never imports a concrete logging backend directly.
package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a logging severity.
type Level int8

// Severity levels, low to high.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal capability the rest of the module depends on.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes leveled, timestamped lines to an io.Writer.
type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (s *stdLogger) Log(level Level, msg string) {
	fmt.Fprintf(s.w, "%s %-5s %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
}

// filter drops any record below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filtering Logger.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with a minimum-severity filter.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}

// Default returns the package's default logger: stdout, filtered to errors.
func Default() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stdout), FilterLevel(LevelError)))
}
