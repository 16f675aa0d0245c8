package render

import (
	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/geom"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/score"
	"github.com/ingyamilmolinar/staffline/internal/glyph"
)

// Glyph-relative hit boxes. Stemmed notes and rests share the tall box,
// whole notes get a wide flat one around the note head.
const (
	stemmedWidth   = 14.566
	stemmedHeight  = 42
	stemmedOffsetY = 12

	wholeWidth   = 25
	wholeHeight  = 14
	wholeOffsetX = -2
	wholeOffsetY = 43

	restWidth   = 20
	restHeight  = 40
	restOffsetY = 10
)

// RenderableNote is a per-frame view of one sequence entry. It is built
// from a decoded snapshot, owns only display state and is dropped once the
// frame is drawn.
type RenderableNote struct {
	entry score.Entry

	yOffset float64
	bbox    geom.Box
	laidOut bool
}

func NewRenderableNote(e score.Entry) *RenderableNote {
	return &RenderableNote{entry: e}
}

func (n *RenderableNote) ID() uuid.UUID      { return n.entry.ID }
func (n *RenderableNote) BarIdx() int        { return n.entry.BarIdx }
func (n *RenderableNote) Active() bool       { return n.entry.Active }
func (n *RenderableNote) Note() music.Note   { return n.entry.Note }
func (n *RenderableNote) Entry() score.Entry { return n.entry }

func (n *RenderableNote) Value() music.Duration     { return n.entry.Note.Duration() }
func (n *RenderableNote) SetValue(d music.Duration) { n.entry.Note.SetDuration(d) }

// Pitch returns the note's pitch; ok is false for rests.
func (n *RenderableNote) Pitch() (music.Pitch, bool) { return n.entry.Note.Pitch() }

// SetPitch is a no-op on rests.
func (n *RenderableNote) SetPitch(p music.Pitch) { n.entry.Note.SetPitch(p) }

// HeightFromPitch is the glyph's offset from the staff baseline, 0 for
// rests.
func (n *RenderableNote) HeightFromPitch() float64 { return n.entry.Note.Height() }

// YOffset is the top of the row the note was last laid out in.
func (n *RenderableNote) YOffset() float64 { return n.yOffset }

func (n *RenderableNote) SetBBox(b geom.Box) {
	n.bbox = b
	n.laidOut = true
}

// BBox panics when called before the note has been laid out this frame.
func (n *RenderableNote) BBox() geom.Box {
	if !n.laidOut {
		panic("render: bounding box read before layout")
	}
	return n.bbox
}

// glyphY is where the glyph tile is placed for a note in the row at rowY.
func (n *RenderableNote) glyphY(rowY float64) float64 {
	return rowY + n.HeightFromPitch() + score.StaffTop
}

// Layout positions the note at x in the row starting at rowY and sets its
// bounding box.
func (n *RenderableNote) Layout(x, rowY float64) {
	n.yOffset = rowY
	gy := n.glyphY(rowY)
	switch {
	case n.entry.Note.IsRest():
		n.SetBBox(geom.Box{X: x, Y: gy + restOffsetY, Width: restWidth, Height: restHeight})
	case n.Value() == music.Whole:
		n.SetBBox(geom.Box{X: x + wholeOffsetX, Y: gy + wholeOffsetY, Width: wholeWidth, Height: wholeHeight})
	default:
		n.SetBBox(geom.Box{X: x, Y: gy + stemmedOffsetY, Width: stemmedWidth, Height: stemmedHeight})
	}
}

// Hit reports whether p is inside the note's laid-out box.
func (n *RenderableNote) Hit(p geom.Point) bool { return n.BBox().Contains(p) }

// Draw lays the note out at x in the row at rowY and paints it active,
// hovered or plain. Hovering is only considered when canBeHovered is set,
// which the bar does when the pointer is inside its cell. It returns n when
// the pointer is over the note and nil otherwise.
func (n *RenderableNote) Draw(dc *gg.Context, painter glyph.Strategy, x, rowY float64, mouse geom.Point, canBeHovered bool) *RenderableNote {
	n.Layout(x, rowY)
	hovered := canBeHovered && n.Hit(mouse)
	state := glyph.StateDefault
	switch {
	case n.Active():
		state = glyph.StateActive
	case hovered:
		state = glyph.StateHovered
	}
	painter.Paint(dc, glyph.For(n.entry.Note), x, n.glyphY(rowY), state)
	if hovered {
		return n
	}
	return nil
}
