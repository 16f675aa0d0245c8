package ui

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ingyamilmolinar/staffline/core/engine"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/score"
)

// Bar 0 holds two quarters: the first at pitch 0 spans (35..49,62..104),
// the second at pitch 1 spans (195..209,57..99).

func TestClickSelectsAndSwitches(t *testing.T) {
	f := newFixture(t, quarters(0, 1), []music.Note{music.NewNote(music.Whole, 0)})

	f.click(40, 80)
	if got := f.active(t); got != f.ids[0][0] {
		t.Fatalf("active=%s want first note", got)
	}
	f.click(200, 80)
	if got := f.active(t); got != f.ids[0][1] {
		t.Fatalf("active=%s want second note", got)
	}
	if f.entry(t, f.ids[0][0]).Active {
		t.Fatalf("previous selection still flagged")
	}
}

func TestClickOnEmptySpaceClears(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.click(40, 80)
	f.click(600, 700)
	if _, ok := f.score.ActiveID(); ok {
		t.Fatalf("selection survived a click on empty space")
	}
}

func TestClickOnActiveNoteKeepsIt(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.click(40, 80)
	f.click(40, 80)
	if got := f.active(t); got != f.ids[0][0] {
		t.Fatalf("active=%s want first note", got)
	}
}

func TestDragActiveNoteChangesPitch(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	first := f.ids[0][0]
	f.click(40, 80)

	f.in.left = true
	f.tick()
	if !f.game.dragging {
		t.Fatalf("press on the active note did not start a drag")
	}
	f.in.moveTo(40, 78)
	f.tick()
	if p, _ := f.entry(t, first).Note.Pitch(); p != 4 {
		t.Fatalf("pitch=%d want 4", p)
	}
	before := f.seq.Version()
	f.tick()
	if f.seq.Version() != before {
		t.Fatalf("holding still rewrote the pitch")
	}
	f.in.moveTo(40, 400)
	f.tick()
	if p, _ := f.entry(t, first).Note.Pitch(); p != 4 {
		t.Fatalf("pointer off the staff changed pitch to %d", p)
	}
	f.in.moveTo(40, 60)
	f.tick()
	f.in.left = false
	f.tick()
	if p, _ := f.entry(t, first).Note.Pitch(); p != 8 {
		t.Fatalf("pitch=%d want 8", p)
	}
	if got := f.active(t); got != first {
		t.Fatalf("release after a drag changed the selection to %s", got)
	}
	if f.game.dragging {
		t.Fatalf("drag still active after release")
	}
}

func TestPressOnInactiveNoteDoesNotDrag(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.click(40, 80)
	f.in.moveTo(200, 80)
	f.tick()
	f.in.left = true
	f.tick()
	f.in.moveTo(200, 60)
	f.tick()
	if p, _ := f.entry(t, f.ids[0][1]).Note.Pitch(); p != 1 {
		t.Fatalf("inactive note dragged to %d", p)
	}
	f.in.left = false
	f.tick()
}

func TestKeyboardEditsActiveNote(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	first := f.ids[0][0]

	f.in.chars = []rune{'a'}
	f.tick()
	if f.score.Len() != 2 {
		t.Fatalf("add without a selection changed the score")
	}

	f.click(40, 80)
	f.in.chars = []rune{'a', '1', 'r'}
	f.tick()
	if f.score.Len() != 3 {
		t.Fatalf("len=%d want 3", f.score.Len())
	}
	e := f.entry(t, first)
	if e.Note.Duration() != music.Whole || !e.Note.IsRest() {
		t.Fatalf("active entry = %s, want whole rest", e.Note)
	}

	f.in.keys[ebiten.KeyDelete] = true
	f.tick()
	f.tick()
	if f.score.Len() != 2 {
		t.Fatalf("held delete removed %d notes", 3-f.score.Len())
	}
	if _, ok := f.score.FindIndexByID(first); ok {
		t.Fatalf("deleted note still present")
	}
	f.in.keys[ebiten.KeyDelete] = false
	f.tick()
}

func TestEscapeClearsSelection(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.click(200, 80)
	f.in.keys[ebiten.KeyEscape] = true
	f.tick()
	if _, ok := f.score.ActiveID(); ok {
		t.Fatalf("escape kept the selection")
	}
}

func TestRedrawOnlyWhenSomethingChanged(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.tick()
	drawn := f.game.framesDrawn
	f.tick()
	if f.game.framesDrawn != drawn {
		t.Fatalf("idle tick redrew")
	}

	f.changes <- engine.Event{Version: 7}
	f.tick()
	if f.game.framesDrawn != drawn+1 {
		t.Fatalf("change event did not redraw")
	}

	f.game.forceRedraw.Store(true)
	f.tick()
	if f.game.framesDrawn != drawn+2 {
		t.Fatalf("forced redraw ignored")
	}
}

func TestHoverTracksPointer(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	f.in.moveTo(200, 80)
	f.tick()
	if id, ok := f.game.Hovered(); !ok || id != f.ids[0][1] {
		t.Fatalf("hovered=%v,%v want second note", id, ok)
	}
	f.in.moveTo(600, 80)
	f.tick()
	if id, ok := f.game.Hovered(); ok {
		t.Fatalf("hovered %s over empty space", id)
	}
}

func TestRenderErrorKeepsRunning(t *testing.T) {
	f := newFixture(t, quarters(0, 1))
	bad := score.Entry{BarIdx: 0, Note: music.NewNote(music.Quarter, 0), ID: uuid.New()}.Props()
	delete(bad, score.KeyID)
	if _, err := f.seq.Insert(0, bad); err != nil {
		t.Fatalf("insert: %v", err)
	}
	f.game.forceRedraw.Store(true)
	f.tick()
	if f.game.lastErr == "" {
		t.Fatalf("malformed entry not reported")
	}
	if _, ok := f.game.Hovered(); ok {
		t.Fatalf("hover survived a failed frame")
	}
	if s := f.game.status(); s == "" {
		t.Fatalf("empty status")
	}
}

func TestWindowSizeCapsToScreen(t *testing.T) {
	installInput(t)
	if w, h := WindowSize(2000, 600); w != 1280 || h != 600 {
		t.Fatalf("window = %dx%d", w, h)
	}
}

func TestScrollBurstEndsInOneRedraw(t *testing.T) {
	f := newFixtureWith(t, Options{ScrollDebounce: 20 * time.Millisecond}, quarters(0, 1))
	f.game.Layout(score.CanvasWidth, 500+statusHeight)
	f.in.x, f.in.y = 500, 300
	f.tick()

	for i := 0; i < 3; i++ {
		f.in.wy = -1
		f.tick()
	}
	if f.game.cam.OffsetY != -3*scrollStep {
		t.Fatalf("offset after burst = %v", f.game.cam.OffsetY)
	}
	drawn := f.game.framesDrawn

	time.Sleep(100 * time.Millisecond)
	f.tick()
	if f.game.framesDrawn != drawn+1 {
		t.Fatalf("frames after burst = %d, want %d", f.game.framesDrawn, drawn+1)
	}
	f.tick()
	time.Sleep(50 * time.Millisecond)
	f.tick()
	if f.game.framesDrawn != drawn+1 {
		t.Fatalf("burst redrew %d times", f.game.framesDrawn-drawn)
	}
}
