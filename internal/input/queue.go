// Package input turns raw device input into key codes for the framework.
// Drivers push into a bounded Queue from their own goroutines; the
// framework loop drains it one key per tick through QueueKeyboard.
package input

import (
	"context"
	"sync/atomic"

	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/logging/events"
)

const DefaultQueueSize = 32

// Driver feeds a Queue until Stop or ctx is done.
type Driver interface {
	Start(ctx context.Context, q *Queue) error
	Stop() error
}

// Queue is a bounded FIFO of key codes. Pushing to a full queue drops the
// new key.
type Queue struct {
	ch      chan keycode.Code
	dropped atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan keycode.Code, size)}
}

// Push reports whether key was queued.
func (q *Queue) Push(key keycode.Code) bool {
	select {
	case q.ch <- key:
		return true
	default:
		total := q.dropped.Add(1)
		events.Key.Dropped(int(key), total)
		return false
	}
}

func (q *Queue) Pop() (keycode.Code, bool) {
	select {
	case key := <-q.ch:
		return key, true
	default:
		return keycode.Unknown, false
	}
}

func (q *Queue) Len() int        { return len(q.ch) }
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// QueueKeyboard adapts a Queue to the framework's polling keyboard.
type QueueKeyboard struct {
	q       *Queue
	pressed bool
	key     keycode.Code

	// OnKey, when set, observes every delivered key.
	OnKey func(keycode.Code)
}

func NewQueueKeyboard(q *Queue) *QueueKeyboard { return &QueueKeyboard{q: q} }

func (k *QueueKeyboard) Tick() error {
	k.key, k.pressed = k.q.Pop()
	if k.pressed && k.OnKey != nil {
		k.OnKey(k.key)
	}
	return nil
}

func (k *QueueKeyboard) IsPressed() bool   { return k.pressed }
func (k *QueueKeyboard) Key() keycode.Code { return k.key }

// NoopDriver never produces input.
type NoopDriver struct{}

func (NoopDriver) Start(ctx context.Context, q *Queue) error { return nil }
func (NoopDriver) Stop() error                               { return nil }
