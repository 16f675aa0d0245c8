package render

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/geom"
	"github.com/ingyamilmolinar/staffline/core/score"
	"github.com/ingyamilmolinar/staffline/internal/glyph"
)

// Horizontal layout inside a bar cell.
const (
	barMarginLeft  = 35
	barMargins     = 70
	noteSlotWidth  = 20
	singleNoteLeft = 80
)

// Bar is the run of consecutive entries sharing one barIdx. Its members
// are re-read from the score on every Scan; nothing but the last frame's
// notes and flags is kept between frames.
type Bar struct {
	Idx int

	notes              []*RenderableNote
	len                int
	hasActiveOrHovered bool
}

func NewBar(idx int) *Bar { return &Bar{Idx: idx} }

// X is the left edge used for note layout.
func (b *Bar) X() float64 { return float64(score.ColumnOf(b.Idx)*score.BarWidth + barMarginLeft) }

// Y is the top of the bar's row.
func (b *Bar) Y() float64 { return score.RowTop(b.Idx) }

// Box is the bar's cell, used to reject pointers before testing notes.
func (b *Bar) Box() geom.Box {
	return geom.Box{X: b.X(), Y: b.Y() + score.StaffTop - 25, Width: score.BarWidth, Height: score.RowHeight}
}

// InCell reports whether p falls in the bar's cell. Cells share their
// edges with the neighbouring bars; a shared edge belongs to the bar to the
// right or below.
func (b *Bar) InCell(p geom.Point) bool { return b.Box().ContainsHalfOpen(p) }

// Len is the number of notes found by the last Scan.
func (b *Bar) Len() int { return b.len }

// Notes returns the notes found by the last Scan.
func (b *Bar) Notes() []*RenderableNote { return b.notes }

// HasActiveOrHovered reports whether the last Paint drew an active note or
// found the pointer over one.
func (b *Bar) HasActiveOrHovered() bool { return b.hasActiveOrHovered }

// Scan collects the bar's notes by walking the score forward from
// noteIdxOffset while barIdx matches. A malformed entry aborts the scan.
func (b *Bar) Scan(sc *score.Score, noteIdxOffset int) error {
	b.notes = b.notes[:0]
	n := sc.Len()
	for pos := noteIdxOffset; pos < n; pos++ {
		e, err := sc.EntryAt(pos)
		if err != nil {
			return fmt.Errorf("bar %d: %w", b.Idx, err)
		}
		if e.BarIdx != b.Idx {
			break
		}
		b.notes = append(b.notes, NewRenderableNote(e))
	}
	b.len = len(b.notes)
	return nil
}

// NoteX is the layout x of the i-th of n notes. Several notes are spread
// evenly over the cell; a single note sits near the middle.
func (b *Bar) NoteX(i, n int) float64 {
	if n <= 1 {
		return b.X() + singleNoteLeft
	}
	spaceBetween := float64(score.BarWidth-barMargins-noteSlotWidth*n) / float64(n-1)
	return b.X() + float64(i)*(noteSlotWidth+spaceBetween)
}

// Paint draws the scanned notes and returns the id of the first one under
// the pointer.
func (b *Bar) Paint(dc *gg.Context, painter glyph.Strategy, mouse geom.Point) (uuid.UUID, bool) {
	inCell := b.InCell(mouse)
	var hit *RenderableNote
	b.hasActiveOrHovered = false
	for i, n := range b.notes {
		h := n.Draw(dc, painter, b.NoteX(i, len(b.notes)), b.Y(), mouse, inCell)
		if hit == nil {
			hit = h
		}
		b.hasActiveOrHovered = b.hasActiveOrHovered || n.Active()
	}
	if hit == nil {
		return uuid.Nil, false
	}
	b.hasActiveOrHovered = true
	return hit.ID(), true
}

// Render scans the bar starting at noteIdxOffset and paints it.
func (b *Bar) Render(dc *gg.Context, painter glyph.Strategy, sc *score.Score, noteIdxOffset int, mouse geom.Point) (uuid.UUID, bool, error) {
	if err := b.Scan(sc, noteIdxOffset); err != nil {
		return uuid.Nil, false, err
	}
	id, ok := b.Paint(dc, painter, mouse)
	return id, ok, nil
}

// HitNote tests p against the notes laid out by the last Paint.
func (b *Bar) HitNote(p geom.Point) (uuid.UUID, bool) {
	if !b.InCell(p) {
		return uuid.Nil, false
	}
	for _, n := range b.notes {
		if n.laidOut && n.Hit(p) {
			return n.ID(), true
		}
	}
	return uuid.Nil, false
}
