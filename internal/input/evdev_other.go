//go:build !linux

package input

import (
	"context"
	"errors"

	"github.com/rook-computer/cardkit/internal/logging"
)

const DefaultEvdevGlob = "/dev/input/event*"

var ErrEvdevUnsupported = errors.New("evdev input is only available on linux")

type EvdevDriver struct {
	Glob   string
	Logger logging.Logger
	OnExit func()
}

func NewEvdevDriver(glob string, logger logging.Logger) *EvdevDriver {
	return &EvdevDriver{Glob: glob, Logger: logging.OrNoop(logger)}
}

func (d *EvdevDriver) Start(ctx context.Context, q *Queue) error { return ErrEvdevUnsupported }
func (d *EvdevDriver) Stop() error                               { return nil }
