package ui

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ingyamilmolinar/staffline/core/engine"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/score"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

var testLogger = game_log.New(io.Discard, game_log.LevelError)

// fakeInput is the mutable input state read by the stubbed seams. Canvas
// coordinates map to the window shifted down by the status line.
type fakeInput struct {
	x, y   int
	left   bool
	keys   map[ebiten.Key]bool
	chars  []rune
	wx, wy float64
}

func installInput(t *testing.T) *fakeInput {
	t.Helper()
	in := &fakeInput{keys: map[ebiten.Key]bool{}}
	restore := SetInputForTest(
		func() (int, int) { return in.x, in.y },
		func(b ebiten.MouseButton) bool { return b == ebiten.MouseButtonLeft && in.left },
		func(k ebiten.Key) bool { return in.keys[k] },
		func() []rune {
			c := in.chars
			in.chars = nil
			return c
		},
		func() (float64, float64) {
			x, y := in.wx, in.wy
			in.wx, in.wy = 0, 0
			return x, y
		},
		func() (int, int) { return 1280, 720 },
	)
	t.Cleanup(restore)
	return in
}

func (in *fakeInput) moveTo(canvasX, canvasY int) {
	in.x, in.y = canvasX, canvasY+statusHeight
}

type fixture struct {
	game    *Game
	score   *score.Score
	seq     *sharedseq.Replica
	in      *fakeInput
	changes chan engine.Event
	ids     [][]uuid.UUID
}

// newFixture builds a game over a local replica holding one bar per element
// of bars, with the window matching the canvas.
func newFixture(t *testing.T, bars ...[]music.Note) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{}, bars...)
}

// newFixtureWith is newFixture with extra game options; Score, Changes and
// Title are filled in.
func newFixtureWith(t *testing.T, opts Options, bars ...[]music.Note) *fixture {
	t.Helper()
	seq := sharedseq.NewReplica("ui-test", testLogger)
	sc := score.New(seq, testLogger)
	ids := make([][]uuid.UUID, len(bars))
	pos := 0
	for bar, notes := range bars {
		for _, n := range notes {
			e := score.Entry{BarIdx: bar, Note: n, ID: uuid.New()}
			if _, err := seq.Insert(pos, e.Props()); err != nil {
				t.Fatalf("insert: %v", err)
			}
			ids[bar] = append(ids[bar], e.ID)
			pos++
		}
	}
	changes := make(chan engine.Event, 4)
	opts.Score, opts.Changes, opts.Title = sc, changes, "test"
	g, err := New(opts, testLogger)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	g.Layout(score.CanvasWidth, score.CanvasHeight+statusHeight)
	f := &fixture{game: g, score: sc, seq: seq, in: installInput(t), changes: changes, ids: ids}
	f.in.moveTo(990, 990)
	f.tick()
	return f
}

func (f *fixture) tick() {
	if err := f.game.Update(); err != nil {
		panic(err)
	}
}

// click presses and releases the left button at a canvas point, hovering
// there first so the renderer has laid the row out.
func (f *fixture) click(x, y int) {
	f.in.moveTo(x, y)
	f.tick()
	f.in.left = true
	f.tick()
	f.in.left = false
	f.tick()
}

func (f *fixture) active(t *testing.T) uuid.UUID {
	t.Helper()
	id, _ := f.score.ActiveID()
	return id
}

func (f *fixture) entry(t *testing.T, id uuid.UUID) score.Entry {
	t.Helper()
	pos, ok := f.score.FindIndexByID(id)
	if !ok {
		t.Fatalf("entry %s missing", id)
	}
	e, err := f.score.EntryAt(pos)
	if err != nil {
		t.Fatalf("entry %s: %v", id, err)
	}
	return e
}

func quarters(pitches ...music.Pitch) []music.Note {
	out := make([]music.Note, len(pitches))
	for i, p := range pitches {
		out[i] = music.NewNote(music.Quarter, p)
	}
	return out
}
