package state

import "testing"

func TestBrightnessClamped(t *testing.T) {
	s := NewStore()
	if got := s.Brightness(); got != DefaultBrightness {
		t.Fatalf("default brightness = %d", got)
	}
	s.SetBrightness(140)
	if got := s.Brightness(); got != 100 {
		t.Fatalf("brightness = %d, want 100", got)
	}
	s.SetBrightness(-3)
	if got := s.Brightness(); got != 0 {
		t.Fatalf("brightness = %d, want 0", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.SetCurrent("Notepad")
	s.RecordKey('a')
	s.RecordKey('b')
	snap := s.Snapshot()
	s.SetCurrent("Launcher")
	if snap.Current != "Notepad" || snap.Keys.Count != 2 || snap.Keys.Last != 'b' {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if s.Snapshot().Phase.String() != "booting" {
		t.Fatalf("unexpected phase %v", s.Snapshot().Phase)
	}
}
