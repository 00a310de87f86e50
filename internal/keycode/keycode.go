// Package keycode defines the key codes delivered by keyboard drivers.
//
// Printable keys arrive as their ASCII value (0x20-0x7E). Special keys use
// the reserved values below, matching the codes the handheld keyboard
// controller reports in ASCII mode.
package keycode

import "strings"

// Code is a single key code.
type Code int

const (
	Unknown   Code = 0x00
	Backspace Code = 0x08
	Tab       Code = 0x09
	LineFeed  Code = 0x0A
	Enter     Code = 0x0D
	Esc       Code = 0x1B
	Space     Code = 0x20
	Del       Code = 0x7F
)

// Arrow keys sit above the printable range so they never read as text.
const (
	Left  Code = 0x80
	Up    Code = 0x81
	Right Code = 0x82
	Down  Code = 0x83
)

// HIDTab is what the keyboard sends for Tab. It collides with '+', so it is
// only a Tab when shift is not held.
const HIDTab Code = 0x2B

// Modifier bits as reported by the keyboard controller.
const (
	ModLCtrl  = 0x01
	ModLShift = 0x02
	ModLAlt   = 0x04
	ModLMeta  = 0x08
	ModRCtrl  = 0x10
	ModRShift = 0x20
	ModRAlt   = 0x40
	ModRMeta  = 0x80
)

var names = map[Code]string{
	Esc:       "ESC",
	Enter:     "ENTER",
	Backspace: "BKSP",
	Tab:       "TAB",
	Del:       "DEL",
	Space:     "SPACE",
	Up:        "UP",
	Down:      "DOWN",
	Left:      "LEFT",
	Right:     "RIGHT",
}

// Name returns a readable name for special keys and "" for regular keys.
func Name(key Code, shifted bool) string {
	if key == HIDTab && !shifted {
		return "TAB"
	}
	return names[key]
}

// IsPrintable reports whether key is a printable ASCII character.
func IsPrintable(key Code) bool {
	return key >= 0x20 && key <= 0x7E
}

// IsEnter reports whether key is Enter or a bare line feed.
func IsEnter(key Code) bool {
	return key == Enter || key == LineFeed
}

// Label returns Name for special keys and the quoted character otherwise.
func Label(key Code) string {
	if name := Name(key, false); name != "" {
		return name
	}
	if IsPrintable(key) {
		return "'" + string(rune(key)) + "'"
	}
	return "?"
}

// DecodeModifiers renders a modifier mask such as "Ctrl+Shft".
func DecodeModifiers(mask int) string {
	mods := make([]string, 0, 8)
	for _, m := range []struct {
		bit  int
		name string
	}{
		{ModLCtrl, "Ctrl"},
		{ModLShift, "Shft"},
		{ModLAlt, "Alt"},
		{ModLMeta, "Opt"},
		{ModRCtrl, "RCtrl"},
		{ModRShift, "RShft"},
		{ModRAlt, "RAlt"},
		{ModRMeta, "ROpt"},
	} {
		if mask&m.bit != 0 {
			mods = append(mods, m.name)
		}
	}
	return strings.Join(mods, "+")
}

// Parse maps a name produced by Name ("ENTER", "esc") or a single
// character back to its code.
func Parse(s string) (Code, bool) {
	if len(s) == 1 && IsPrintable(Code(s[0])) {
		return Code(s[0]), true
	}
	upper := strings.ToUpper(strings.TrimSpace(s))
	for code, name := range names {
		if name == upper {
			return code, true
		}
	}
	return Unknown, false
}
