package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFileLoggerFormatsLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("framework", "launching %s", "Notepad")
	l.Errorf("dispatch", "boom: %d", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], " [INFO] framework: launching Notepad") {
		t.Fatalf("unexpected info line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " [ERROR] dispatch: boom: 3") {
		t.Fatalf("unexpected error line %q", lines[1])
	}
}

func TestTraceDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetTraceWriter(&buf)
	defer SetTraceWriter(nil)
	SetTraceEnabled(false)

	Trace("app.launch", map[string]interface{}{"app": "x"})
	if buf.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buf.String())
	}
}

func TestTraceEncodesEntry(t *testing.T) {
	var buf bytes.Buffer
	SetTraceWriter(&buf)
	defer SetTraceWriter(nil)
	SetTraceEnabled(true)
	defer SetTraceEnabled(false)

	Trace("key.dispatch", map[string]interface{}{"key": 27})

	var entry struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode trace entry: %v", err)
	}
	if entry.Event != "key.dispatch" {
		t.Fatalf("expected key.dispatch, got %q", entry.Event)
	}
	if entry.Payload["key"] != float64(27) {
		t.Fatalf("expected key 27 in payload, got %v", entry.Payload["key"])
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Fatalf("expected NoopLogger for nil input")
	}
	l := NewFileLogger(&bytes.Buffer{})
	if OrNoop(l) != Logger(l) {
		t.Fatalf("expected logger passed through")
	}
}
