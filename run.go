package reel

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the windowed host loop. Zero values get defaults.
type RunConfig struct {
	Title  string
	Width  int
	Height int
}

// Run opens a window and drives rt from an Ebitengine game loop: keyboard
// and mouse state are translated into engine input events, Step is called
// with the measured frame time, and a minimal reference renderer draws the
// current tree (solid rects for sprites and buttons, debug text for text
// nodes). Cartridges needing real rendering supply their own render callback
// and host loop instead. Blocks until the window closes or rt stops.
func Run(rt *Runtime, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.Title == "" {
		cfg.Title = "reel"
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)

	if !rt.Running() {
		rt.Start()
	}
	return ebiten.RunGame(&hostGame{
		rt:       rt,
		cfg:      cfg,
		last:     time.Now(),
		keyState: make(map[ebiten.Key]bool),
	})
}

// hostGame adapts a Runtime to ebiten.Game.
type hostGame struct {
	rt       *Runtime
	cfg      RunConfig
	last     time.Time
	keyState map[ebiten.Key]bool
	btnState [3]bool
	white    *ebiten.Image
}

func (g *hostGame) Update() error {
	now := time.Now()
	frame := now.Sub(g.last).Seconds() * 1000
	g.last = now

	g.pollInput()
	g.rt.Step(frame)

	if !g.rt.Running() {
		return ebiten.Termination
	}
	return nil
}

// pollInput forwards key and pointer state changes. The dispatcher owns
// edge detection; only changes are forwarded to keep the event volume down.
func (g *hostGame) pollInput() {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		pressed := ebiten.IsKeyPressed(k)
		if pressed == g.keyState[k] {
			continue
		}
		g.keyState[k] = pressed
		g.rt.HandleInput(InputEvent{Kind: InputKey, Key: k.String(), Pressed: pressed})
	}

	cx, cy := ebiten.CursorPosition()
	for b := 0; b < len(g.btnState); b++ {
		pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButton(b))
		if pressed == g.btnState[b] {
			continue
		}
		g.btnState[b] = pressed
		g.rt.HandleInput(InputEvent{
			Kind: InputPointer, Button: b, Pressed: pressed,
			X: float64(cx), Y: float64(cy),
		})
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	scene := g.rt.Scene()
	if scene == nil {
		return
	}
	if g.white == nil {
		g.white = ebiten.NewImage(1, 1)
		g.white.Fill(color.White)
	}
	scene.Walk(func(n *Node) bool {
		if !n.Visible {
			return false // invisible subtree: nothing below draws
		}
		switch n.Type {
		case NodeTypeSprite, NodeTypeButton, NodeTypeParticles2D:
			g.drawQuad(screen, n)
			if n.Type == NodeTypeButton && n.Text != "" {
				wt := WorldTransform(n)
				ebitenutil.DebugPrintAt(screen, n.Text, int(wt.X), int(wt.Y))
			}
		case NodeTypeText:
			wt := WorldTransform(n)
			ebitenutil.DebugPrintAt(screen, n.Text, int(wt.X), int(wt.Y))
		}
		return true
	})
}

func (g *hostGame) drawQuad(screen *ebiten.Image, n *Node) {
	wt := WorldTransform(n)
	w, h := n.Width, n.Height
	if w <= 0 {
		w = 32
	}
	if h <= 0 {
		h = 32
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w*wt.ScaleX, h*wt.ScaleY)
	op.GeoM.Rotate(wt.Rotation)
	op.GeoM.Translate(wt.X, wt.Y)
	op.ColorScale.ScaleAlpha(float32(wt.Alpha))
	screen.DrawImage(g.white, op)
}

func (g *hostGame) Layout(w, h int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
