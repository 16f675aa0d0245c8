package render

import (
	"encoding/binary"
	"hash/fnv"
)

// Tracker remembers which staff rows have been painted on the current
// canvas. It lives as long as the canvas and is Reset when the whole score
// is reloaded or the canvas is cleared.
type Tracker struct {
	lines  map[int]bool
	hot    map[int]bool
	prints map[int]uint64
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset forgets every row so the next frame repaints all of them.
func (t *Tracker) Reset() {
	t.lines = map[int]bool{}
	t.hot = map[int]bool{}
	t.prints = map[int]uint64{}
}

// LinesDrawn reports whether row has been painted since the last Reset.
func (t *Tracker) LinesDrawn(row int) bool { return t.lines[row] }

// Hot reports whether row held an active or hovered note when last painted.
func (t *Tracker) Hot(row int) bool { return t.hot[row] }

// CanSkip reports whether row may keep last frame's pixels: the pointer is
// more than a row away, the lines are already there, nothing in the row was
// highlighted and its content is unchanged.
func (t *Tracker) CanSkip(row int, pointerDistance float64, fp uint64) bool {
	return pointerDistance > skipDistance &&
		t.lines[row] &&
		!t.hot[row] &&
		t.prints[row] == fp
}

// Painted records a repaint of row.
func (t *Tracker) Painted(row int, fp uint64, hot bool) {
	t.lines[row] = true
	t.hot[row] = hot
	t.prints[row] = fp
}

// rowPrint hashes everything that changes how a row looks.
func rowPrint(bars []*Bar) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	for _, b := range bars {
		put(int64(b.Idx))
		put(int64(b.Len()))
		for _, n := range b.Notes() {
			id := n.ID()
			h.Write(id[:])
			put(int64(n.Note().Kind()))
			put(int64(n.Value()))
			p, _ := n.Pitch()
			put(int64(p))
			if n.Active() {
				put(1)
			} else {
				put(0)
			}
		}
	}
	return h.Sum64()
}
