package ui

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/ingyamilmolinar/staffline/core/engine"
	"github.com/ingyamilmolinar/staffline/core/geom"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/score"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"github.com/ingyamilmolinar/staffline/internal/render"
)

const (
	statusHeight          = 18
	DefaultScrollDebounce = 80 * time.Millisecond
)

var colBackdrop = color.RGBA{60, 60, 60, 255}

// Options wires a Game to an editing session.
type Options struct {
	Score *score.Score
	// Changes delivers an event whenever the shared sequence changed.
	Changes <-chan engine.Event
	// Connected reports whether the session has caught up with the relay.
	Connected func() bool
	// Title is shown in the status line, typically the join URL.
	Title          string
	ScrollDebounce time.Duration
}

// Game is the editor: it polls input, turns it into score edits and keeps
// the retained canvas in step with the shared sequence.
type Game struct {
	/* subsystems */
	cam      *Camera
	score    *score.Score
	renderer *render.Renderer
	canvas   *gg.Context
	logger   *game_log.Logger

	changes   <-chan engine.Event
	connected func() bool
	title     string

	/* redraw bookkeeping */
	img         *ebiten.Image
	debounced   func(func())
	forceRedraw atomic.Bool
	needsRedraw bool
	canvasDirty bool
	lastMouse   geom.Point
	lastErr     string
	framesDrawn int

	/* pointer state */
	hovered   uuid.UUID
	hoverOK   bool
	leftPrev  bool
	dragging  bool
	dragMoved bool
	cursor    ebiten.CursorShapeType

	/* keyboard edge detection */
	keysPrev map[ebiten.Key]bool

	winW, winH int
}

func New(opts Options, logger *game_log.Logger) (*Game, error) {
	r, err := render.NewRenderer(logger)
	if err != nil {
		return nil, err
	}
	wait := opts.ScrollDebounce
	if wait <= 0 {
		wait = DefaultScrollDebounce
	}
	connected := opts.Connected
	if connected == nil {
		connected = func() bool { return true }
	}
	g := &Game{
		cam:         NewCamera(score.CanvasWidth, score.CanvasHeight),
		score:       opts.Score,
		renderer:    r,
		canvas:      render.NewCanvas(),
		logger:      logger.Tag("EDITOR"),
		changes:     opts.Changes,
		connected:   connected,
		title:       opts.Title,
		debounced:   debounce.New(wait),
		needsRedraw: true,
		keysPrev:    map[ebiten.Key]bool{},
		cursor:      ebiten.CursorShapeDefault,
	}
	return g, nil
}

func (g *Game) Layout(w, h int) (int, int) {
	if w != g.winW || h != g.winH {
		g.winW, g.winH = w, h
		g.cam.ViewW, g.cam.ViewH = float64(w), float64(h-statusHeight)
		g.cam.Snap()
		g.logger.Debugf("layout %dx%d", w, h)
	}
	return w, h
}

// Canvas exposes the retained drawing surface.
func (g *Game) Canvas() *gg.Context { return g.canvas }

// Hovered returns the note under the pointer as of the last redraw.
func (g *Game) Hovered() (uuid.UUID, bool) { return g.hovered, g.hoverOK }

/* ─────────────── Update ─────────────────────────────────────────────── */

func (g *Game) Update() error {
	g.drainChanges()

	if g.cam.HandleWheel() {
		// a scroll burst ends in one forced pass
		g.debounced(func() { g.forceRedraw.Store(true) })
	}

	g.handleKeys()

	mx, my := cursorPosition()
	p := g.cam.CanvasPos(mx, my-statusHeight)
	left := isMouseButtonPressed(ebiten.MouseButtonLeft)
	g.handlePointer(p, left)

	if g.forceRedraw.Swap(false) || p != g.lastMouse || left != g.leftPrev {
		g.needsRedraw = true
	}
	g.lastMouse = p
	g.leftPrev = left

	if g.needsRedraw {
		g.redraw(p)
	}
	g.updateCursor()
	return nil
}

func (g *Game) drainChanges() {
	for {
		select {
		case <-g.changes:
			g.needsRedraw = true
		default:
			return
		}
	}
}

// redraw runs one render pass. A malformed entry abandons the frame; the
// error is logged once per distinct message.
func (g *Game) redraw(p geom.Point) {
	g.needsRedraw = false
	id, ok, err := g.renderer.Draw(g.canvas, g.score, p)
	if err != nil {
		if msg := err.Error(); msg != g.lastErr {
			g.lastErr = msg
			g.logger.Errorf("render: %v", err)
		}
		g.hovered, g.hoverOK = uuid.Nil, false
		return
	}
	g.lastErr = ""
	g.hovered, g.hoverOK = id, ok
	g.canvasDirty = true
	g.framesDrawn++
}

func (g *Game) activeID() (uuid.UUID, bool) { return g.score.ActiveID() }

// handlePointer turns presses, drags and releases into score edits.
// Pressing on the active note starts a pitch drag; releasing without
// having dragged is a click that selects the note under the pointer or
// clears the selection on empty space.
func (g *Game) handlePointer(p geom.Point, left bool) {
	switch {
	case left && !g.leftPrev:
		active, ok := g.activeID()
		if id, hit := g.renderer.HitNote(p); hit && ok && id == active {
			g.dragging, g.dragMoved = true, false
			g.logger.Debugf("drag start on %s", id)
		}
	case left && g.dragging:
		active, ok := g.activeID()
		if !ok {
			// removed remotely mid-drag
			g.dragging = false
			return
		}
		changed, err := g.score.SetPitchByDrag(active, p.Y)
		if err != nil {
			g.logger.Errorf("drag: %v", err)
			return
		}
		if changed {
			g.dragMoved = true
			g.needsRedraw = true
		}
	case !left && g.leftPrev:
		wasDrag := g.dragging && g.dragMoved
		g.dragging = false
		if wasDrag {
			return
		}
		g.click(p)
	}
}

func (g *Game) click(p geom.Point) {
	id, hit := g.renderer.HitNote(p)
	if !hit {
		id = uuid.Nil
	}
	if err := g.score.SetActive(id); err != nil {
		g.logger.Errorf("select: %v", err)
		return
	}
	g.needsRedraw = true
	g.logger.Debugf("click at %.0f,%.0f -> %s", p.X, p.Y, id)
}

var valueKeys = map[rune]music.Duration{
	'1': music.Whole,
	'2': music.Half,
	'3': music.Quarter,
	'4': music.Eighth,
	'5': music.Sixteenth,
}

// handleKeys applies the editing shortcuts to the active note.
func (g *Game) handleKeys() {
	active, ok := g.activeID()
	for _, r := range inputChars() {
		if !ok {
			break
		}
		var err error
		d, isValue := valueKeys[r]
		switch {
		case r == 'a' || r == 'A':
			_, err = g.score.AddNote(active)
		case r == 'r' || r == 'R':
			_, err = g.score.ToggleRest(active)
		case isValue:
			_, err = g.score.SetValue(active, d)
		default:
			continue
		}
		if err != nil {
			g.logger.Errorf("key %q: %v", r, err)
		}
		g.needsRedraw = true
	}

	del, back := g.keyPressed(ebiten.KeyDelete), g.keyPressed(ebiten.KeyBackspace)
	if (del || back) && ok {
		if _, err := g.score.DeleteNote(active); err != nil {
			g.logger.Errorf("delete: %v", err)
		}
		g.needsRedraw = true
	}
	if g.keyPressed(ebiten.KeyEscape) && ok {
		if err := g.score.ClearActive(); err != nil {
			g.logger.Errorf("clear: %v", err)
		}
		g.needsRedraw = true
	}
}

// keyPressed reports a key going down this tick.
func (g *Game) keyPressed(k ebiten.Key) bool {
	down := isKeyPressed(k)
	was := g.keysPrev[k]
	g.keysPrev[k] = down
	return down && !was
}

func (g *Game) updateCursor() {
	shape := ebiten.CursorShapeDefault
	switch {
	case g.dragging:
		shape = ebiten.CursorShapeMove
	case g.hoverOK:
		shape = ebiten.CursorShapePointer
	}
	if shape != g.cursor {
		g.cursor = shape
		setCursorShape(shape)
	}
}

/* ─────────────── Draw ───────────────────────────────────────────────── */

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackdrop)
	if g.img == nil {
		g.img = ebiten.NewImage(score.CanvasWidth, score.CanvasHeight)
		g.canvasDirty = true
	}
	if g.canvasDirty {
		if rgba, ok := g.canvas.Image().(*image.RGBA); ok {
			g.img.WritePixels(rgba.Pix)
		}
		g.canvasDirty = false
	}

	view := screen.SubImage(image.Rect(0, statusHeight, g.winW, g.winH)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = g.cam.GeoMRounded()
	op.GeoM.Translate(0, statusHeight)
	view.DrawImage(g.img, op)

	ebitenutil.DebugPrintAt(screen, g.status(), 4, 1)
}

func (g *Game) status() string {
	conn := "connecting"
	if g.connected() {
		conn = "connected"
	}
	s := fmt.Sprintf("%s | %s | %d notes", g.title, conn, g.score.Len())
	if g.lastErr != "" {
		s += " | render error"
	}
	return s
}

// WindowSize caps a requested window size to the screen.
func WindowSize(w, h int) (int, int) {
	sw, sh := screenSize()
	if sw > 0 && w > sw {
		w = sw
	}
	if sh > 0 && h > sh {
		h = sh
	}
	return w, h
}
