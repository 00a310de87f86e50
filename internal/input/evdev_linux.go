//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/cardkit/internal/logging"
)

const DefaultEvdevGlob = "/dev/input/event*"

// EvdevDriver reads every matching evdev device and queues translated keys.
// F4 calls OnExit instead of producing a key.
type EvdevDriver struct {
	Glob   string
	Logger logging.Logger
	OnExit func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewEvdevDriver(glob string, logger logging.Logger) *EvdevDriver {
	if glob == "" {
		glob = DefaultEvdevGlob
	}
	return &EvdevDriver{Glob: glob, Logger: logging.OrNoop(logger)}
}

func (d *EvdevDriver) Start(ctx context.Context, q *Queue) error {
	logger := logging.OrNoop(d.Logger)
	paths, err := filepath.Glob(d.Glob)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		logger.Infof("input", "no evdev devices match %s", d.Glob)
		return nil
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	ctx, d.cancel = context.WithCancel(ctx)
	for _, path := range paths {
		d.wg.Add(1)
		go func(p string) {
			defer d.wg.Done()
			d.readDevice(ctx, p, tvSize, q)
		}(path)
	}
	return nil
}

func (d *EvdevDriver) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	return nil
}

func (d *EvdevDriver) readDevice(ctx context.Context, path string, tvSize int, q *Queue) {
	logger := logging.OrNoop(d.Logger)
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		logger.Errorf("input", "open %s: %v", path, err)
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()
	logger.Infof("input", "reading %s", path)

	var mods modState
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			logger.Errorf("input", "poll %s: %v", path, err)
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			logger.Errorf("input", "read %s: %v", path, err)
			return
		}
		for _, ev := range decodeEvents(buf[:n], tvSize) {
			if ev.typ == evKey && ev.code == keyF4 && ev.value == 1 && d.OnExit != nil {
				d.once.Do(func() {
					logger.Infof("input", "F4 pressed: exiting")
					d.OnExit()
				})
				continue
			}
			if key, ok := mods.apply(ev); ok {
				q.Push(key)
			}
		}
	}
}
