//go:build !linux

package system

import "errors"

const (
	kdText     = 0x00
	kdGraphics = 0x01
)

var errNoKD = errors.New("console mode switching is only supported on linux")

func (c *Console) setMode(mode int) error { return errNoKD }
