package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/cardkit/internal/app"
	"github.com/rook-computer/cardkit/internal/config"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/system"
)

func main() {
	cfg := config.MustLoad(config.Defaults{
		Name:    "cardkit",
		Input:   config.InputEvdev,
		LogFile: "./cardkit-debug.log",
	})

	// Redirect before anything else prints so crashes stay diagnosable
	// while the console is in graphics mode.
	if err := system.RedirectStdIO(cfg.Logging.StdioLog); err != nil {
		fmt.Println("stdio log redirect error:", err)
	}

	logger := app.OpenLogger(cfg)

	var sinks []render.Sink
	fb, err := render.OpenFramebuffer(cfg.Device.Framebuffer, logger)
	if err != nil {
		// Keep running without a display; the dev API still serves screenshots.
		logger.Errorf("fb", "open %s: %v", cfg.Device.Framebuffer, err)
		fmt.Println("framebuffer error:", err)
	} else {
		sinks = append(sinks, fb)
	}

	host, err := app.New(cfg, logger, sinks...)
	if err != nil {
		fmt.Println("startup error:", err)
		os.Exit(1)
	}
	host.Console = system.NewConsole(logger)
	defer host.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := host.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("run error:", err)
		_ = host.Close()
		os.Exit(1)
	}
}
