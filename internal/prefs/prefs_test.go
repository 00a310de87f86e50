package prefs

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	display := s.Namespace("display")
	if got := display.Int("brightness", 80); got != 80 {
		t.Fatalf("missing key fallback = %d", got)
	}
	if err := display.SetInt("brightness", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Namespace("notepad").SetString("text", "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got := s.Namespace("display").Int("brightness", 80); got != 40 {
		t.Fatalf("brightness = %d, want 40", got)
	}
	if got := s.Namespace("notepad").String("text", ""); got != "hello" {
		t.Fatalf("text = %q", got)
	}
	if _, err := s.Namespace("display").Get("text"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across namespaces, got %v", err)
	}
	if err := s.Namespace("notepad").Delete("text"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.Namespace("notepad").String("text", "gone"); got != "gone" {
		t.Fatalf("deleted key read %q", got)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	ns := s.Namespace("display")
	if got := ns.Int("brightness", 7); got != 7 {
		t.Fatalf("nil store read %d", got)
	}
	if err := ns.SetInt("brightness", 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close nil: %v", err)
	}
}
