// Package logger provides structured logging for the devoverflow progression
// core. It supports log levels, structured fields, and context propagation.
// No external dependencies - uses only standard library.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
	// LevelFatal is for fatal errors that require program termination.
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String returns the string representation of the log level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelFatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel parses a string into a Level. Unknown strings fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Common field constructors for convenience.
func String(key, value string) Field  { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with any value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger writes JSON lines to a single output. Field keys are flattened into
// the top level of each line next to ts/level/msg, so log pipelines can index
// them without unwrapping a nested object.
type Logger struct {
	mu         sync.Mutex
	output     io.Writer
	level      Level
	bound      []Field
	addCaller  bool
	callerSkip int
}

// Options configures the logger.
type Options struct {
	Output     io.Writer
	Level      Level
	AddCaller  bool
	CallerSkip int
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Output:    os.Stdout,
		Level:     LevelInfo,
		AddCaller: true,
	}
}

// New creates a new Logger with the given options.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Logger{
		output:     opts.Output,
		level:      opts.Level,
		addCaller:  opts.AddCaller,
		callerSkip: opts.CallerSkip,
	}
}

// Default creates a logger with default options.
func Default() *Logger {
	return New(DefaultOptions())
}

func (l *Logger) clone() *Logger {
	return &Logger{
		output:     l.output,
		level:      l.level,
		bound:      l.bound,
		addCaller:  l.addCaller,
		callerSkip: l.callerSkip,
	}
}

// With returns a new Logger with the given fields bound to every line.
func (l *Logger) With(fields ...Field) *Logger {
	c := l.clone()
	c.bound = append(append(make([]Field, 0, len(l.bound)+len(fields)), l.bound...), fields...)
	return c
}

// WithLevel returns a new Logger with the specified minimum log level.
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

func (l *Logger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	line := make(map[string]any, 3+len(l.bound)+len(fields))
	line["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["msg"] = msg

	if l.addCaller {
		if _, file, no, ok := runtime.Caller(2 + l.callerSkip); ok {
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			line["caller"] = fmt.Sprintf("%s:%d", file, no)
		}
	}

	for _, f := range l.bound {
		line[f.Key] = f.Value
	}
	for _, f := range fields {
		line[f.Key] = f.Value
	}

	data, err := json.Marshal(line)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"ts":%q,"level":%q,"msg":%q}`,
			line["ts"], level.String(), msg))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(append(data, '\n'))
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.emit(LevelDebug, msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Field) {
	l.emit(LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.emit(LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) {
	l.emit(LevelError, msg, fields)
}

// Fatal logs a fatal message and exits the program.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.emit(LevelFatal, msg, fields)
	os.Exit(1)
}

// Context key for logger.
type ctxKey struct{}

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or returns a default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// Progression-domain logging helpers.
func UserID(id string) Field        { return String("user_id", id) }
func TargetID(id string) Field      { return String("target_id", id) }
func TargetType(t string) Field     { return String("target_type", t) }
func BadgeSlug(slug string) Field   { return String("badge", slug) }
func Achievement(s string) Field    { return String("achievement", s) }
func TaskType(t string) Field       { return String("task_type", t) }
func Metric(name string) Field      { return String("metric", name) }
func XPAmount(xp int) Field         { return Int("xp_amount", xp) }
func VoteDelta(d int) Field         { return Int("vote_delta", d) }
func Reputation(r int) Field        { return Int("reputation", r) }
func Component(name string) Field   { return String("component", name) }
func Operation(name string) Field   { return String("operation", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
