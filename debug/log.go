package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes categorized diagnostic lines. A nil *Logger discards
// everything, so callers never need to check before logging.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	file     *os.File
	counters map[string]int
	now      func() time.Time
}

// New returns a logger writing to w. A nil w yields a discarding logger.
func New(w io.Writer) *Logger {
	if w == nil {
		return nil
	}
	return &Logger{
		w:        w,
		counters: make(map[string]int),
		now:      time.Now,
	}
}

// Discard returns a logger that drops all output.
func Discard() *Logger {
	return nil
}

// Open starts logging to the file at path, truncating it.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	l := New(f)
	l.file = f
	l.Log("debug", "=== Debug logging started ===")
	return l, nil
}

// Enabled reports whether output goes anywhere.
func (l *Logger) Enabled() bool {
	return l != nil
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.w = io.Discard
	return err
}

// Log writes a message to the debug log
func (l *Logger) Log(category, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.w, "[%s] %-10s %s\n", ts, category, msg)
	if l.file != nil {
		l.file.Sync() // flush immediately so we see logs even on crash
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
func (l *Logger) LogEvery(n int, category, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	key := category + format
	l.counters[key]++
	count := l.counters[key]
	l.mu.Unlock()

	if n <= 1 || count%n == 0 {
		l.Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
