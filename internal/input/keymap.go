package input

import (
	"encoding/binary"

	"github.com/rook-computer/cardkit/internal/keycode"
)

// Linux input-event-codes.h
const (
	evKey = 0x01

	keyEsc        = 1
	keyBackspace  = 14
	keyTab        = 15
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftAlt    = 56
	keySpace      = 57
	keyF4         = 62
	keyKPEnter    = 96
	keyRightCtrl  = 97
	keyRightAlt   = 100
	keyUp         = 103
	keyLeft       = 105
	keyRight      = 106
	keyDown       = 108
	keyDelete     = 111
)

type keyRow struct {
	first   uint16
	plain   string
	shifted string
}

var printableRows = []keyRow{
	{2, "1234567890-=", "!@#$%^&*()_+"},
	{16, "qwertyuiop[]", "QWERTYUIOP{}"},
	{30, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
	{43, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
}

var specialKeys = map[uint16]keycode.Code{
	keyEsc:       keycode.Esc,
	keyBackspace: keycode.Backspace,
	keyTab:       keycode.Tab,
	keyEnter:     keycode.Enter,
	keyKPEnter:   keycode.Enter,
	keySpace:     keycode.Space,
	keyUp:        keycode.Up,
	keyDown:      keycode.Down,
	keyLeft:      keycode.Left,
	keyRight:     keycode.Right,
	keyDelete:    keycode.Del,
}

// Translate maps an evdev key code to a key code. Modifier keys and
// unmapped keys report false.
func Translate(code uint16, shift bool) (keycode.Code, bool) {
	if key, ok := specialKeys[code]; ok {
		return key, true
	}
	for _, row := range printableRows {
		if code < row.first || int(code-row.first) >= len(row.plain) {
			continue
		}
		i := code - row.first
		if shift {
			return keycode.Code(row.shifted[i]), true
		}
		return keycode.Code(row.plain[i]), true
	}
	return keycode.Unknown, false
}

// rawEvent is one struct input_event.
type rawEvent struct {
	typ   uint16
	code  uint16
	value int32
}

// decodeEvents parses back to back input_event records whose timeval is
// tvSize bytes.
func decodeEvents(buf []byte, tvSize int) []rawEvent {
	size := tvSize + 8
	var out []rawEvent
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off : off+size]
		out = append(out, rawEvent{
			typ:   binary.LittleEndian.Uint16(rec[tvSize : tvSize+2]),
			code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
			value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
		})
	}
	return out
}

// modState tracks held modifiers for one device.
type modState struct {
	mask int
}

func (m *modState) shifted() bool {
	return m.mask&(keycode.ModLShift|keycode.ModRShift) != 0
}

// apply updates modifiers and returns the key to deliver, if any. Presses
// and auto-repeats deliver; releases do not.
func (m *modState) apply(ev rawEvent) (keycode.Code, bool) {
	if ev.typ != evKey {
		return keycode.Unknown, false
	}
	bit := 0
	switch ev.code {
	case keyLeftShift:
		bit = keycode.ModLShift
	case keyRightShift:
		bit = keycode.ModRShift
	case keyLeftCtrl:
		bit = keycode.ModLCtrl
	case keyRightCtrl:
		bit = keycode.ModRCtrl
	case keyLeftAlt:
		bit = keycode.ModLAlt
	case keyRightAlt:
		bit = keycode.ModRAlt
	}
	if bit != 0 {
		if ev.value == 0 {
			m.mask &^= bit
		} else {
			m.mask |= bit
		}
		return keycode.Unknown, false
	}
	if ev.value == 0 {
		return keycode.Unknown, false
	}
	return Translate(ev.code, m.shifted())
}
