// Package logger implements the executor's ports.Logger adapter over
// log/slog. Unlike a generic application logger, Error understands the
// go.trai.ch/zerr chain well enough to surface the metadata a failing task
// carries — its fingerprint, a shelled-out command's exit code — as indented
// "key: value" lines inside the logged message, instead of flattening the
// chain into one opaque string.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
}

// New creates a Logger writing text-formatted records to stderr.
func New() *Logger {
	return &Logger{logger: slog.New(newHandler(os.Stderr))}
}

func newHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// SetOutput redirects future log records to w. Tests use this to capture
// output into a buffer instead of the process's real stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(newHandler(w))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Error logs a task failure. err is walked as a zerr chain (see
// collectErrorEntries) so metadata attached anywhere along it reaches the
// log line instead of being swallowed.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// ErrorEntry is one link of an error chain, extracted for logging: its own
// message, independent of the causes beneath it, and whatever structured
// metadata was attached to it directly.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks err's chain one layer at a time. A *zerr.Error
// contributes its own Message() and Metadata() and the walk continues into
// its cause; any other error contributes its full Error() string and the
// walk stops there, since a plain error carries no further structure to
// unwrap meaningfully.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	current := err
	for current != nil {
		if zErr, ok := current.(*zerr.Error); ok {
			entries = append(entries, ErrorEntry{
				Message:  zErr.Message(),
				Metadata: zErr.Metadata(),
			})
			current = errors.Unwrap(current)
			continue
		}
		entries = append(entries, ErrorEntry{Message: current.Error()})
		break
	}
	return entries
}

// formatErrorEntries renders entries the way a human reads a causal chain:
// the outermost message first, each cause beneath it under "Caused by",
// with any metadata sorted alphabetically and indented under its message.
func formatErrorEntries(entries []ErrorEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var lines []string
	for i, e := range entries {
		msgLines := strings.Split(e.Message, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, l := range msgLines[1:] {
				lines = append(lines, "       "+l)
			}
			lines = append(lines, metadataLines(e.Metadata, "       ")...)
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, l := range msgLines[1:] {
			lines = append(lines, "      "+l)
		}
		lines = append(lines, metadataLines(e.Metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func metadataLines(meta map[string]any, indent string) []string {
	if len(meta) == 0 {
		return nil
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, meta[k]))
	}
	return lines
}
