package output

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	// MaxLogSizeMB is the maximum size of the error log file before rotation
	MaxLogSizeMB = 10
	// MaxLogFiles is the maximum number of rotated log files to keep
	MaxLogFiles = 5
)

// Entry is one record of the error log
type Entry struct {
	Type    string
	Message string
	// Source is the server or nick whose line caused the error, if any
	Source string
	Err    error
}

// ErrorLogger appends entries to a file, rotating it to path.1 .. path.N
type ErrorLogger struct {
	logPath  string
	mu       sync.Mutex
	maxSize  int64 // in bytes
	maxFiles int
}

// NewErrorLogger creates a new ErrorLogger with the default limits
func NewErrorLogger(logPath string) *ErrorLogger {
	return NewErrorLoggerWithLimits(logPath, MaxLogSizeMB, MaxLogFiles)
}

// NewErrorLoggerWithLimits creates an ErrorLogger rotating at maxSizeMB and
// keeping at most maxFiles rotated files. Non-positive values fall back to
// the defaults.
func NewErrorLoggerWithLimits(logPath string, maxSizeMB, maxFiles int) *ErrorLogger {
	if maxSizeMB <= 0 {
		maxSizeMB = MaxLogSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = MaxLogFiles
	}
	return &ErrorLogger{
		logPath:  logPath,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
	}
}

// LogError writes an entry without a source
func (e *ErrorLogger) LogError(errorType, errorMessage string, originalErr error) error {
	return e.Write(Entry{Type: errorType, Message: errorMessage, Err: originalErr})
}

// Write appends entry with a timestamp and the caller's stack trace
func (e *ErrorLogger) Write(entry Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ERROR: %s\n", time.Now().Format("2006-01-02 15:04:05"), entry.Message)
	fmt.Fprintf(&b, "Type: %s\n", entry.Type)
	if entry.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", entry.Source)
	}
	if entry.Err != nil {
		fmt.Fprintf(&b, "Details: %v\n", entry.Err)
	}
	b.WriteString("Stack Trace:\n")
	writeStack(&b)
	b.WriteString("\n")

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.rotateIfNeeded(); err != nil {
		return fmt.Errorf("failed to rotate log: %w", err)
	}

	f, err := os.OpenFile(e.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write to error log: %w", err)
	}
	return nil
}

func (e *ErrorLogger) rotateIfNeeded() error {
	info, err := os.Stat(e.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < e.maxSize {
		return nil
	}

	// path.N-1 overwrites path.N, ..., path becomes path.1
	for i := e.maxFiles - 1; i >= 0; i-- {
		from := e.rotatedName(i)
		if err := os.Rename(from, e.rotatedName(i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log %s: %w", from, err)
		}
	}
	return nil
}

func (e *ErrorLogger) rotatedName(i int) string {
	if i == 0 {
		return e.logPath
	}
	return fmt.Sprintf("%s.%d", e.logPath, i)
}

// logging frames left out of stack traces
var loggingFrames = []string{"output.(*ErrorLogger)", "output.(*Output)", "output.writeStack"}

// writeStack appends the stack of the code that logged the error
func writeStack(b *strings.Builder) {
	const maxStackDepth = 32
	pcs := make([]uintptr, maxStackDepth)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs)])
	for {
		frame, more := frames.Next()
		if !isLoggingFrame(frame.Function) {
			fmt.Fprintf(b, "  at %s (%s:%d)\n", frame.Function, filepath.Base(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
}

func isLoggingFrame(function string) bool {
	for _, f := range loggingFrames {
		if strings.Contains(function, f) {
			return true
		}
	}
	return false
}

// EnsureLogDirectory creates the log directory if it doesn't exist
func EnsureLogDirectory(logPath string) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}
