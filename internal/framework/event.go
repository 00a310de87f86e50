package framework

import (
	"fmt"

	"github.com/rook-computer/cardkit/internal/keycode"
)

// KeyEvent is the single reusable event the loop hands to key handlers.
type KeyEvent struct {
	Key     keycode.Code
	Handled bool
}

// Keyboard is polled once per loop iteration.
type Keyboard interface {
	Tick() error
	IsPressed() bool
	Key() keycode.Code
}

// HandlerPanic wraps a panic recovered from a key handler.
type HandlerPanic struct {
	App   string
	Value interface{}
	Stack []byte
}

func (p *HandlerPanic) Error() string {
	return fmt.Sprintf("%s: key handler panic: %v", p.App, p.Value)
}

type idleKeyboard struct{}

func (idleKeyboard) Tick() error       { return nil }
func (idleKeyboard) IsPressed() bool   { return false }
func (idleKeyboard) Key() keycode.Code { return keycode.Unknown }
