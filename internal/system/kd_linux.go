//go:build linux

package system

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A
)

func (c *Console) setMode(mode int) error {
	var lastErr error
	for _, p := range c.paths() {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no console paths")
	}
	return lastErr
}
