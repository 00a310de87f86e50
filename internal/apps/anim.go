package apps

import (
	"context"
	"image"
	"image/color"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/render"
)

const (
	animFrameInterval = 25 * time.Millisecond
	ballSize          = 12
)

type ball struct {
	x, y   float64
	vx, vy float64
	color  color.Color
}

// Anim bounces balls from its background task. Hiding the app stops the
// task, so no frame is drawn after the switch.
type Anim struct {
	framework.Base

	canvas *render.Canvas
	rng    *rand.Rand
	balls  []ball
	frames atomic.Int64
}

func NewAnim(deps Deps) *Anim {
	a := &Anim{canvas: deps.Canvas, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	a.Title = "Animation Demo"
	return a
}

// Frames counts frames drawn since the app was created.
func (a *Anim) Frames() int64 { return a.frames.Load() }

func (a *Anim) OnLaunch() {
	colors := []color.Color{render.Red, render.Yellow, render.Green, render.Cyan}
	speeds := []float64{-2.5, -2.0, 2.0, 2.5}
	a.balls = a.balls[:0]
	for i := 0; i < 4; i++ {
		a.balls = append(a.balls, ball{
			x:     float64(5 + a.rng.Intn(render.CanvasWidth-30)),
			y:     float64(20 + a.rng.Intn(render.CanvasHeight-50)),
			vx:    speeds[a.rng.Intn(len(speeds))],
			vy:    speeds[a.rng.Intn(len(speeds))] * 0.75,
			color: colors[i%len(colors)],
		})
	}
}

func (a *Anim) OnView() { a.drawFrame() }

func (a *Anim) OnRun(ctx context.Context) error {
	ticker := time.NewTicker(animFrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.step()
			a.drawFrame()
		}
	}
}

func (a *Anim) step() {
	for i := range a.balls {
		b := &a.balls[i]
		b.x += b.vx
		b.y += b.vy
		if b.x < 0 || b.x > float64(render.CanvasWidth-ballSize) {
			b.vx = -b.vx
			b.x = clamp(b.x, 0, float64(render.CanvasWidth-ballSize))
		}
		if b.y < 14 || b.y > float64(render.CanvasHeight-14-ballSize) {
			b.vy = -b.vy
			b.y = clamp(b.y, 14, float64(render.CanvasHeight-14-ballSize))
		}
	}
}

func (a *Anim) drawFrame() {
	a.frames.Add(1)
	draw(a.canvas, func(d render.Drawer) {
		d.Clear(render.Black)
		d.DrawText("Animation", 4, 0, render.TextStyle{Color: render.Green})
		for _, b := range a.balls {
			x, y := int(b.x), int(b.y)
			d.FillRect(image.Rect(x, y, x+ballSize, y+ballSize), b.color)
		}
		d.DrawText("ESC=back", 0, hintY, hintStyle)
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
