// Package logs provides append-only debug logging for the hooks.
// Logging must never fail the caller: every error is swallowed, because a
// hook that dies on a logging problem would block the agent loop.
package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger appends timestamped lines to a per-component log file.
type Logger struct {
	path string
}

// New returns a logger writing to <dir>/<name>.log. A nil receiver is valid
// and discards everything, so callers can pass loggers around unconditionally.
func New(dir, name string) *Logger {
	return &Logger{path: filepath.Join(dir, name+".log")}
}

// Printf appends one formatted line with an RFC 3339 timestamp.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
