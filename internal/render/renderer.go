package render

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/geom"
	"github.com/ingyamilmolinar/staffline/core/score"
	"github.com/ingyamilmolinar/staffline/internal/glyph"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Staff geometry within a row.
const (
	bandTop     = 20
	bandHeight  = 100
	staffLines  = 5
	lineSpacing = 10
	labelSize   = 9

	// skipDistance is how far the pointer must be from a row's band before
	// the row is considered for skipping.
	skipDistance = 100
)

var (
	colorPaper = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorLabel = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

// Stats describes the last frame.
type Stats struct {
	Rows        int
	RowsPainted int
	RowsSkipped int
	NotesDrawn  int
}

// Renderer draws a score into a retained canvas, repainting only the rows
// that may have changed since the previous frame.
type Renderer struct {
	Painter glyph.Strategy
	Tracker *Tracker

	logger *game_log.Logger
	label  font.Face
	bars   []*Bar
	stats  Stats
}

func NewRenderer(logger *game_log.Logger) (*Renderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: load label font: %w", err)
	}
	return &Renderer{
		Painter: glyph.NewStrategy(),
		Tracker: NewTracker(),
		logger:  logger.Tag("RENDER"),
		label:   truetype.NewFace(f, &truetype.Options{Size: labelSize}),
	}, nil
}

// NewCanvas returns an empty drawing surface of the editor's size.
func NewCanvas() *gg.Context {
	dc := gg.NewContext(score.CanvasWidth, score.CanvasHeight)
	dc.SetColor(colorPaper)
	dc.Clear()
	return dc
}

func (r *Renderer) Stats() Stats { return r.stats }

// Bars returns the bars laid out by the last frame.
func (r *Renderer) Bars() []*Bar { return r.bars }

// Reset forgets all painted rows, forcing the next Draw to repaint
// everything. Call it after the canvas has been cleared or replaced.
func (r *Renderer) Reset() { r.Tracker.Reset() }

func (r *Renderer) bar(idx int) *Bar {
	for len(r.bars) <= idx {
		r.bars = append(r.bars, NewBar(len(r.bars)))
	}
	return r.bars[idx]
}

// Draw renders sc onto dc and returns the note under mouse, if any. Bar
// membership and note indices are derived from the score on every call;
// bars past the last entry's barIdx are not drawn. A malformed entry
// aborts the frame with an error wrapping score.ErrMalformedEntry. The
// score is held for the whole pass so remote ops land between frames.
func (r *Renderer) Draw(dc *gg.Context, sc *score.Score, mouse geom.Point) (hovered uuid.UUID, found bool, err error) {
	err = sc.Atomic(func(sc *score.Score) error {
		hovered, found, err = r.draw(dc, sc, mouse)
		return err
	})
	return hovered, found, err
}

func (r *Renderer) draw(dc *gg.Context, sc *score.Score, mouse geom.Point) (uuid.UUID, bool, error) {
	r.stats = Stats{}
	last, ok := sc.LastBarIdx()
	if !ok {
		r.bars = r.bars[:0]
		return uuid.Nil, false, nil
	}
	if len(r.bars) > last+1 {
		r.bars = r.bars[:last+1]
	}

	var hovered uuid.UUID
	found := false
	offset := 0
	for row := 0; row <= score.RowOf(last); row++ {
		first := row * score.BarsPerRow
		var rowBars []*Bar
		for idx := first; idx < first+score.BarsPerRow && idx <= last; idx++ {
			b := r.bar(idx)
			if err := b.Scan(sc, offset); err != nil {
				r.logger.Debugf("frame abandoned: %v", err)
				return uuid.Nil, false, err
			}
			offset += b.Len()
			rowBars = append(rowBars, b)
		}
		r.stats.Rows++

		rowY := float64(row * score.RowHeight)
		fp := rowPrint(rowBars)
		dist := geom.VerticalDistance(mouse.Y, rowY+bandTop, rowY+bandTop+bandHeight)
		if r.Tracker.CanSkip(row, dist, fp) {
			r.stats.RowsSkipped++
			continue
		}

		r.drawStaff(dc, rowY, rowBars)
		hot := false
		for _, b := range rowBars {
			id, ok := b.Paint(dc, r.Painter, mouse)
			if ok && !found {
				hovered, found = id, true
			}
			hot = hot || b.HasActiveOrHovered()
			r.stats.NotesDrawn += b.Len()
		}
		r.Tracker.Painted(row, fp, hot)
		r.stats.RowsPainted++
	}
	r.logger.Debugf("frame: %d rows, %d painted, %d notes", r.stats.Rows, r.stats.RowsPainted, r.stats.NotesDrawn)
	return hovered, found, nil
}

// HitNote tests p against the layout of the last frame.
func (r *Renderer) HitNote(p geom.Point) (uuid.UUID, bool) {
	for _, b := range r.bars {
		if id, ok := b.HitNote(p); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// drawStaff clears a row's band and draws its five lines, the bar lines
// and the bar numbers.
func (r *Renderer) drawStaff(dc *gg.Context, rowY float64, bars []*Bar) {
	w := float64(dc.Width())
	dc.SetColor(colorPaper)
	dc.DrawRectangle(0, rowY+bandTop, w, bandHeight)
	dc.Fill()

	dc.SetColor(glyph.ColorDefault)
	dc.SetLineWidth(1)
	top := rowY + score.StaffTop + lineSpacing
	bottom := rowY + score.StaffTop + staffLines*lineSpacing
	for i := 1; i <= staffLines; i++ {
		y := rowY + score.StaffTop + float64(i*lineSpacing)
		dc.DrawLine(0, y, w, y)
	}
	for x := 1.0; x <= w+1; x += w / score.BarsPerRow {
		bx := min(x, w-1)
		dc.DrawLine(bx, top, bx, bottom)
	}
	dc.Stroke()

	dc.SetFontFace(r.label)
	dc.SetColor(colorLabel)
	for _, b := range bars {
		x := float64(score.ColumnOf(b.Idx)*score.BarWidth) + 4
		dc.DrawString(strconv.Itoa(b.Idx+1), x, top-3)
	}
}
