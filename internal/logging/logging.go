// Package logging provides the component logger shared by every subsystem
// and an optional JSON trace stream for debugging app switches and key
// routing.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger writes human-readable lines tagged with a component name.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes "<RFC3339> [LEVEL] component: message" lines to w.
// Safe for use from several goroutines.
type FileLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFileLogger(w io.Writer) *FileLogger { return &FileLogger{w: w} }

func (l *FileLogger) Infof(component string, format string, args ...interface{}) {
	l.write("INFO", component, format, args...)
}

func (l *FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.write("ERROR", component, format, args...)
}

func (l *FileLogger) write(level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	_, _ = io.WriteString(l.w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
	l.mu.Unlock()
}

// OrNoop returns l, or a NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

const defaultTraceFile = "cardkit-trace.log"

var (
	traceMu      sync.Mutex
	traceEnabled bool
	tracePath    = defaultTraceFile
	traceSink    io.Writer
)

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	traceMu.Lock()
	traceEnabled = enabled
	traceMu.Unlock()
}

// ConfigureTrace sets the trace file. Empty values fall back to the default
// path. Missing directories are created.
func ConfigureTrace(path string) {
	traceMu.Lock()
	defer traceMu.Unlock()
	traceSink = nil
	if strings.TrimSpace(path) == "" {
		tracePath = defaultTraceFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create trace directory: %v\n", err)
		tracePath = defaultTraceFile
		return
	}
	tracePath = path
}

// SetTraceWriter routes trace entries to w instead of the trace file.
// Passing nil restores file output.
func SetTraceWriter(w io.Writer) {
	traceMu.Lock()
	traceSink = w
	traceMu.Unlock()
}

// Trace appends a JSON entry to the trace stream when tracing is enabled.
func Trace(event string, payload interface{}) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if !traceEnabled {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	w := traceSink
	if w == nil {
		f, err := os.OpenFile(tracePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
			return
		}
		defer f.Close()
		w = f
	}

	if err := json.NewEncoder(w).Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}
