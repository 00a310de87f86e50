package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/rook-computer/cardkit/internal/app"
	"github.com/rook-computer/cardkit/internal/config"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/system"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[2J\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l"
)

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff"))
	bannerBody  = lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	bannerBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func main() {
	cfg := config.MustLoad(config.Defaults{
		Name:       "cardkit-sim",
		Input:      config.InputTerminal,
		ListenAddr: ":8080",
		LogFile:    "./cardkit-sim.log",
	})
	if err := system.RedirectStdIO(cfg.Logging.StdioLog); err != nil {
		fmt.Println("stdio log redirect error:", err)
	}
	logger := app.OpenLogger(cfg)

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	if cfg.Device.Input == config.InputTerminal && !isatty.IsTerminal(os.Stdin.Fd()) {
		logger.Infof("sim", "stdin is not a terminal, key input only via the dev API")
		cfg.Device.Input = config.InputNone
	}

	fmt.Println(banner(cfg, interactive))

	var sinks []render.Sink
	if interactive {
		sinks = append(sinks, render.NewTerminalSink(os.Stdout, terminalScale(int(os.Stdout.Fd()))))
	}

	host, err := app.New(cfg, logger, sinks...)
	if err != nil {
		fmt.Println("startup error:", err)
		os.Exit(1)
	}
	defer host.Close()
	host.Routes = NewSimControl(host).Register

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactive {
		fmt.Print(enterAltScreen)
	}
	err = host.Start(ctx)
	if interactive {
		fmt.Print(leaveAltScreen)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("run error:", err)
		_ = host.Close()
		os.Exit(1)
	}
}

// terminalScale picks the smallest downscale that fits the canvas into the
// terminal. Each cell shows one pixel column and two pixel rows.
func terminalScale(fd int) int {
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return 2
	}
	scale := 1
	for render.CanvasWidth/scale > cols || render.CanvasHeight/scale/2+1 > rows {
		scale++
	}
	return scale
}

func banner(cfg config.Config, interactive bool) string {
	mode := "remote: " + cfg.Apps.Dir
	if cfg.Apps.Dir == "" {
		mode = "flash: embedded manifests"
	}
	lines := []string{
		bannerTitle.Render("cardkit simulator"),
		bannerBody.Render("apps   " + mode),
		bannerBody.Render("input  " + cfg.Device.Input),
	}
	if cfg.Server.ListenAddr != "" {
		lines = append(lines, bannerBody.Render("api    http://"+displayAddr(cfg.Server.ListenAddr)+"/api/v1/"))
	}
	if interactive {
		lines = append(lines, bannerBody.Render("keys   arrows ; . navigate, Enter select, Esc back, Ctrl-C quit"))
	}
	return bannerBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
