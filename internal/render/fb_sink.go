package render

import (
	"image"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/cardkit/internal/logging"
)

const DefaultFramebuffer = "/dev/fb0"

// FBSink scales frames onto a Linux framebuffer device.
type FBSink struct {
	dev    *fb.Device
	logger logging.Logger
}

func OpenFramebuffer(path string, logger logging.Logger) (*FBSink, error) {
	if path == "" {
		path = DefaultFramebuffer
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	logger = logging.OrNoop(logger)
	bounds := dev.Bounds()
	logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", path, bounds.Dx(), bounds.Dy())
	return &FBSink{dev: dev, logger: logger}, nil
}

func (s *FBSink) Present(frame *image.RGBA) error {
	if s.dev == nil {
		return nil
	}
	xdraw.NearestNeighbor.Scale(s.dev, s.dev.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	return nil
}

func (s *FBSink) Close() error {
	if s.dev == nil {
		return nil
	}
	s.dev.Close()
	s.dev = nil
	return nil
}
