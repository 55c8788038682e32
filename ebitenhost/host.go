// Package ebitenhost runs an inkboard.Board inside an Ebitengine window: it
// polls mouse, wheel, keyboard and focus, sets the OS cursor and paints the
// board's visible frame as flat boxes.
package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/inkboard"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws an FPS/TPS readout in the top-left corner.
	ShowFPS bool
	// ShowLabels prints each item's type at detail and label zoom levels.
	ShowLabels bool
	// Background is the canvas clear colour. Zero means dark grey.
	Background color.RGBA
	// WheelLineHeight converts wheel notches to pixels. Zero means 40.
	WheelLineHeight float64
	// ScreenshotDir receives PNGs requested by the board. Zero means
	// "screenshots".
	ScreenshotDir string
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.Background == (color.RGBA{}) {
		c.Background = color.RGBA{0x1e, 0x1e, 0x22, 0xff}
	}
	if c.WheelLineHeight <= 0 {
		c.WheelLineHeight = 40
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	return c
}

// Game adapts a Board to ebiten.Game. Use it directly to embed the board in
// a larger ebiten program; Run covers the common case.
type Game struct {
	board *inkboard.Board
	cfg   RunConfig
	input inputState

	fpsElapsed float64
	fpsText    string
}

// NewGame wraps board for ebiten.RunGame.
func NewGame(board *inkboard.Board, cfg RunConfig) *Game {
	return &Game{
		board: board,
		cfg:   cfg.withDefaults(),
		input: inputState{focused: true},
	}
}

// Update polls input and advances the board one tick.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	g.input.poll(g.board, g.cfg.WheelLineHeight)
	g.board.Update(dt)
	ebiten.SetCursorShape(cursorShape(g.board.Cursor()))

	if g.cfg.ShowFPS {
		g.fpsElapsed += dt
		if g.fpsElapsed >= 0.5 || g.fpsText == "" {
			g.fpsElapsed = 0
			g.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nzoom: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS(), g.board.Viewport().Scale)
		}
	}
	return nil
}

// Draw paints the board's visible frame.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Background)
	drawFrame(screen, g.board, g.board.Frame(), g.cfg.ShowLabels)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrintAt(screen, g.fpsText, 4, 4)
	}
	if labels := g.board.TakeScreenshotRequests(); len(labels) > 0 {
		flushScreenshots(screen, g.cfg.ScreenshotDir, labels, g.board.Logger)
	}
}

// Layout keeps the board's screen size in step with the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.board.SetScreenSize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and drives board until the window closes. Pending
// persistence is drained before Run returns.
func Run(board *inkboard.Board, cfg RunConfig) error {
	g := NewGame(board, cfg)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(g)
	board.Close()
	return err
}
