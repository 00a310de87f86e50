package state

import "sync"

type Phase int

const (
	BOOTING Phase = iota
	RUNNING
	STOPPED
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case RUNNING:
		return "running"
	case STOPPED:
		return "stopped"
	}
	return "unknown"
}

const DefaultBrightness = 80

type KeyInfo struct {
	Last    int
	Count   uint64
	Dropped uint64
}

type State struct {
	Phase      Phase
	RunMode    string
	Current    string
	Brightness int
	Keys       KeyInfo
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING, Brightness: DefaultBrightness}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) SetRunMode(mode string) {
	store.mu.Lock()
	store.state.RunMode = mode
	store.mu.Unlock()
}

func (store *Store) SetCurrent(name string) {
	store.mu.Lock()
	store.state.Current = name
	store.mu.Unlock()
}

// SetBrightness clamps pct to 0..100.
func (store *Store) SetBrightness(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	store.mu.Lock()
	store.state.Brightness = pct
	store.mu.Unlock()
}

func (store *Store) Brightness() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state.Brightness
}

func (store *Store) RecordKey(key int) {
	store.mu.Lock()
	store.state.Keys.Last = key
	store.state.Keys.Count++
	store.mu.Unlock()
}

func (store *Store) SetDropped(total uint64) {
	store.mu.Lock()
	store.state.Keys.Dropped = total
	store.mu.Unlock()
}
