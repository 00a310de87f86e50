// Package system holds the small pieces of device plumbing that sit below
// the framework: console mode control and crash-log redirection.
package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/rook-computer/cardkit/internal/logging"
)

const (
	hideCursorSeq = "\x1b[?25l"
	showCursorSeq = "\x1b[?25h"
)

// DefaultConsolePaths are tried in order: the controlling tty, then the
// active virtual terminal.
var DefaultConsolePaths = []string{"/dev/tty", "/dev/tty0"}

// Console switches the virtual terminal between text and graphics mode so
// the kernel console does not draw over the framebuffer.
type Console struct {
	Paths  []string
	Logger logging.Logger

	graphics bool
}

func NewConsole(logger logging.Logger) *Console {
	return &Console{Paths: DefaultConsolePaths, Logger: logging.OrNoop(logger)}
}

// EnterGraphics hides the cursor and sets KD_GRAPHICS. Both steps are
// attempted; the first failure is returned.
func (c *Console) EnterGraphics() error {
	logger := logging.OrNoop(c.Logger)
	var errs []error
	if err := c.setMode(kdGraphics); err != nil {
		logger.Errorf("tty", "KD_GRAPHICS failed: %v", err)
		errs = append(errs, err)
	} else {
		c.graphics = true
		logger.Infof("tty", "KD_GRAPHICS set")
	}
	if err := c.write(hideCursorSeq); err != nil {
		logger.Errorf("tty", "hide cursor failed: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Restore shows the cursor and returns to text mode if EnterGraphics
// switched it.
func (c *Console) Restore() error {
	logger := logging.OrNoop(c.Logger)
	var errs []error
	if err := c.write(showCursorSeq); err != nil {
		logger.Errorf("tty", "show cursor failed: %v", err)
		errs = append(errs, err)
	}
	if c.graphics {
		if err := c.setMode(kdText); err != nil {
			logger.Errorf("tty", "KD_TEXT failed: %v", err)
			errs = append(errs, err)
		} else {
			c.graphics = false
			logger.Infof("tty", "KD_TEXT set")
		}
	}
	return errors.Join(errs...)
}

func (c *Console) paths() []string {
	if len(c.Paths) == 0 {
		return DefaultConsolePaths
	}
	return c.Paths
}

func (c *Console) write(seq string) error {
	var lastErr error
	for _, p := range c.paths() {
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(seq)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no console paths")
	}
	return fmt.Errorf("write VT: %w", lastErr)
}
