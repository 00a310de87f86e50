package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/logging"
)

const ctrlC = 0x03

// TerminalDriver reads keys from a terminal in raw mode. Non-terminal
// input is read as is.
type TerminalDriver struct {
	In          *os.File
	Logger      logging.Logger
	OnInterrupt func()

	mu       sync.Mutex
	oldState *term.State
}

func NewTerminalDriver(in *os.File, logger logging.Logger) *TerminalDriver {
	return &TerminalDriver{In: in, Logger: logging.OrNoop(logger)}
}

func (d *TerminalDriver) Start(ctx context.Context, q *Queue) error {
	logger := logging.OrNoop(d.Logger)
	fd := int(d.In.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.oldState = state
		d.mu.Unlock()
	}
	go func() {
		if err := d.read(ctx, d.In, q); err != nil && err != io.EOF {
			logger.Errorf("input", "terminal read: %v", err)
		}
	}()
	return nil
}

func (d *TerminalDriver) read(ctx context.Context, r io.Reader, q *Queue) error {
	reader := bufio.NewReader(r)
	buf := make([]byte, 256)
	for {
		n, err := reader.Read(buf)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		keys, interrupt := ParseTerminal(buf[:n])
		for _, key := range keys {
			q.Push(key)
		}
		if interrupt && d.OnInterrupt != nil {
			d.OnInterrupt()
		}
	}
}

// Stop restores the terminal. A read already in progress returns on the
// next byte or EOF.
func (d *TerminalDriver) Stop() error {
	d.mu.Lock()
	state := d.oldState
	d.oldState = nil
	d.mu.Unlock()
	if state == nil {
		return nil
	}
	return term.Restore(int(d.In.Fd()), state)
}

// ParseTerminal converts one read of terminal input into key codes. A lone
// ESC byte is the escape key. CSI arrow sequences become arrow keys and other
// complete CSI sequences are dropped.
func ParseTerminal(data []byte) (keys []keycode.Code, interrupt bool) {
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == ctrlC:
			interrupt = true
		case b == 0x1b:
			key, consumed := parseEscape(data[i:])
			if key != keycode.Unknown {
				keys = append(keys, key)
			}
			i += consumed - 1
		case b == '\r':
			keys = append(keys, keycode.Enter)
		case b == '\n':
			keys = append(keys, keycode.LineFeed)
		case b == 0x7f || b == 0x08:
			keys = append(keys, keycode.Backspace)
		case b == '\t':
			keys = append(keys, keycode.Tab)
		case b >= 0x20 && b < 0x7f:
			keys = append(keys, keycode.Code(b))
		}
	}
	return keys, interrupt
}

// parseEscape decodes the escape sequence at the start of seq and reports how
// many bytes it used. Unrecognised CSI sequences yield Unknown so they are
// skipped whole; a truncated one falls back to a bare ESC.
func parseEscape(seq []byte) (keycode.Code, int) {
	if len(seq) >= 3 && seq[1] == 'O' {
		if key, ok := arrowKeys[seq[2]]; ok {
			return key, 3
		}
		return keycode.Unknown, 3
	}
	if len(seq) < 3 || seq[1] != '[' {
		return keycode.Esc, 1
	}
	// parameter and intermediate bytes, then one final byte
	end := 2
	for end < len(seq) && seq[end] >= 0x20 && seq[end] <= 0x3f {
		end++
	}
	if end >= len(seq) || seq[end] < 0x40 || seq[end] > 0x7e {
		return keycode.Esc, 1
	}
	params, final := string(seq[2:end]), seq[end]
	consumed := end + 1
	switch {
	case params == "" && arrowKeys[final] != 0:
		return arrowKeys[final], consumed
	case params == "3" && final == '~':
		return keycode.Del, consumed
	}
	return keycode.Unknown, consumed
}

var arrowKeys = map[byte]keycode.Code{
	'A': keycode.Up,
	'B': keycode.Down,
	'C': keycode.Right,
	'D': keycode.Left,
}
