package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
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

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

// ParseLevel converts a configuration string into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Format selects the slog handler used for CLI output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// InitForCLI initializes the logging system for CLI mode.
// This should be called once at application startup.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	Init(filterLevel, FormatText, output)
}

// Init initializes the logger with an explicit output format.
func Init(level LogLevel, format Format, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()
	slog.SetDefault(defaultLogger) // Set for any global slog calls if necessary
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func logInternal(level LogLevel, subsystem string, attrs []slog.Attr, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	logger := current()
	if logger == nil {
		fmt.Fprintf(os.Stderr, "[LOGGING_ERROR] Logger not initialized. Log: [%s] %s\n", level, msg)
		return
	}

	slogAttrs := make([]slog.Attr, 0, len(attrs)+2)
	slogAttrs = append(slogAttrs, slog.String("subsystem", subsystem))
	slogAttrs = append(slogAttrs, attrs...)
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, nil, err, messageFmt, args...)
}

// Logger narrates a single test case or one client thread of it. Every entry
// carries the test kind, the test name and, for thread loggers, the thread ID.
type Logger struct {
	subsystem string
	name      string
	attrs     []slog.Attr
}

// NewTestLogger returns the logger for one test case.
func NewTestLogger(testKind, testName string) *Logger {
	return &Logger{
		subsystem: testKind,
		name:      testName,
		attrs:     []slog.Attr{slog.String("test", testName)},
	}
}

// NewThreadLogger derives the logger for client thread threadID of the test.
func (l *Logger) NewThreadLogger(threadID int) *Logger {
	attrs := make([]slog.Attr, len(l.attrs), len(l.attrs)+1)
	copy(attrs, l.attrs)
	return &Logger{
		subsystem: l.subsystem,
		name:      fmt.Sprintf("%s:%d", l.name, threadID),
		attrs:     append(attrs, slog.Int("thread", threadID)),
	}
}

// Name is the display name, "<test>" or "<test>:<thread>".
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Debug(messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, l.subsystem, l.attrs, nil, messageFmt, args...)
}

func (l *Logger) Info(messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, l.subsystem, l.attrs, nil, messageFmt, args...)
}

func (l *Logger) Warn(messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, l.subsystem, l.attrs, nil, messageFmt, args...)
}

func (l *Logger) Error(err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, l.subsystem, l.attrs, err, messageFmt, args...)
}

// MaxLineLength bounds a single line logged by Writer. Longer lines are cut
// and marked as truncated; the lines after them are still logged.
const MaxLineLength = 1024 * 1024

// Writer returns a writer that logs every line written to it at the given
// level, tagged with stream. Close flushes a trailing partial line and must
// be called once the producer is done.
func (l *Logger) Writer(level LogLevel, stream string) io.WriteCloser {
	pr, pw := io.Pipe()
	lw := &lineWriter{pw: pw, done: make(chan struct{})}

	attrs := make([]slog.Attr, len(l.attrs), len(l.attrs)+1)
	copy(attrs, l.attrs)
	attrs = append(attrs, slog.String("stream", stream))

	go func() {
		defer close(lw.done)
		r := bufio.NewReaderSize(pr, 64*1024)
		var line []byte
		dropped := 0
		for {
			chunk, isPrefix, err := r.ReadLine()
			if err != nil {
				// ReadLine hands out a final unterminated line before the error.
				return
			}
			if room := MaxLineLength - len(line); room >= len(chunk) {
				line = append(line, chunk...)
			} else {
				line = append(line, chunk[:room]...)
				dropped += len(chunk) - room
			}
			if isPrefix {
				continue
			}
			if dropped > 0 {
				logInternal(level, l.subsystem, attrs, nil, "%s... [truncated %d bytes]", line, dropped)
			} else {
				logInternal(level, l.subsystem, attrs, nil, "%s", line)
			}
			line = line[:0]
			dropped = 0
		}
	}()

	return lw
}

type lineWriter struct {
	pw   *io.PipeWriter
	done chan struct{}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *lineWriter) Close() error {
	err := w.pw.Close()
	<-w.done
	return err
}
