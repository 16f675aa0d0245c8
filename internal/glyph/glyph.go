package glyph

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/ingyamilmolinar/staffline/core/music"
)

// TileSize is the edge of the square every glyph is laid out in, measured
// from the point passed to a Painter.
const TileSize = 100

// Glyph is the vector outline of one symbol. Strokes are drawn as lines,
// Fills are filled with the even-odd rule. place maps path coordinates
// into the glyph's tile.
type Glyph struct {
	Name    string
	Strokes []*Path
	Fills   []*Path
	place   func(dc *gg.Context)
}

// Trace strokes and fills g with its tile origin at (x, y) in the current
// colour. The context's transform is restored afterwards.
func (g *Glyph) Trace(dc *gg.Context, x, y float64) {
	dc.Push()
	defer dc.Pop()
	dc.Translate(x, y)
	if g.place != nil {
		g.place(dc)
	}
	for _, p := range g.Strokes {
		dc.NewSubPath()
		p.Append(dc)
		dc.Stroke()
	}
	dc.SetFillRule(gg.FillRuleEvenOdd)
	for _, p := range g.Fills {
		dc.NewSubPath()
		p.Append(dc)
		dc.Fill()
	}
	dc.SetFillRule(gg.FillRuleWinding)
}

var (
	quarterNote = &Glyph{
		Name:    "quarter",
		Strokes: []*Path{MustParsePath("m454.73 43.056v-33.588")},
		Fills: []*Path{MustParsePath("m451.09 49.39c3.3958-1.82 5.2053-5.1146 4.0922-7.593-1.1873-2.6436-5.267-3.3897-9.1066-1.6654-3.8396 " +
			"1.7244-5.9922 5.2694-4.8049 7.913 1.1873 2.6436 5.267 3.3897 9.1066 1.6654 0.23997-0.10777 0.48628-0.19874 0.71268-0.32007z")},
		place: func(dc *gg.Context) { dc.Translate(-440.95, 5.5311) },
	}

	halfNote = &Glyph{
		Name:    "half",
		Strokes: []*Path{MustParsePath("M 234.05234,224.51692 L 234.05234,258.10449")},
		Fills: []*Path{MustParsePath("M 237.68484,218.18353 C 234.289,220.0035 232.47956,223.29808 233.59262,225.77649 " +
			"C 234.77988,228.42013 238.85963,229.16621 242.6992,227.44186 C 246.53876,225.7175 248.69136,222.17246 247.5041,219.52883 " +
			"C 246.31683,216.88519 242.23709,216.13911 238.39752,217.86346 C 238.15755,217.97123 237.91124,218.0622 237.68484,218.18353 z " +
			"M 238.79457,220.42569 C 239.0358,220.30136 239.28005,220.20766 239.53576,220.09282 C 242.80883,218.62288 245.96997,218.55375 246.59187,219.93851 " +
			"C 247.21377,221.32327 245.06209,223.64013 241.78902,225.11008 C 238.51594,226.58002 235.3548,226.64915 234.73291,225.26439 " +
			"C 234.15959,223.98781 235.94804,221.89278 238.79457,220.42569 z")},
		// the outline is drawn upside down: rotate half a turn about the tile
		place: func(dc *gg.Context) {
			dc.Translate(247.5, 272)
			dc.Scale(-1, -1)
		},
	}

	wholeNote = &Glyph{
		Name: "whole",
		Fills: []*Path{MustParsePath("m 10.091389,2.0894754 c -5.0907201,0.1822 -9.12500016,2.5826 -9.12500016,5.5 0,3.0359996 4.36800006,5.4999996 " +
			"9.75000016,5.4999996 5.381999,0 9.749999,-2.464 9.749999,-5.4999996 0,-3.036 -4.368,-5.5 -9.749999,-5.5 -0.21023,0 -0.41806,-0.0074 -0.625,0 z " +
			"m -1.6250001,1.0625 c 1.3579,-0.139 3.0679801,0.4906 4.4999991,1.7812 2.14502,1.9332 2.87122,4.6438998 1.625,6.0624996 l -0.03125,0.0313 " +
			"c -1.27086,1.4101 -4.062299,0.9748 -6.2187491,-0.9688 -2.15645,-1.9434998 -2.86461,-4.6835996 -1.59375,-6.0936996 0.42693,-0.4737 1.03181,-0.7422 1.71875,-0.8125 z")},
		place: func(dc *gg.Context) { dc.Translate(0, 7.5+35) },
	}

	// Rests sit on the staff lines at tile y 10..50.
	wholeRest = &Glyph{
		Name:  "whole-rest",
		Fills: []*Path{MustParsePath("M 3 20 H 17 V 25 H 3 Z")},
	}
	halfRest = &Glyph{
		Name:  "half-rest",
		Fills: []*Path{MustParsePath("M 3 25 H 17 V 30 H 3 Z")},
	}
	quarterRest = &Glyph{
		Name:    "quarter-rest",
		Strokes: []*Path{MustParsePath("M 8 15 L 14 22 L 8 29 L 14 36 L 9 36 C 6 38 7 43 11 45")},
	}
)

// For picks the glyph for n. Eighth and sixteenth notes have no glyph of
// their own yet and borrow the quarter shapes.
func For(n music.Note) *Glyph {
	if n.IsRest() {
		switch n.Duration() {
		case music.Whole:
			return wholeRest
		case music.Half:
			return halfRest
		default:
			return quarterRest
		}
	}
	switch n.Duration() {
	case music.Whole:
		return wholeNote
	case music.Half:
		return halfNote
	default:
		return quarterNote
	}
}

// All lists every built-in glyph.
func All() []*Glyph {
	return []*Glyph{quarterNote, halfNote, wholeNote, wholeRest, halfRest, quarterRest}
}

// State is the visual state a note is painted in.
type State int

const (
	StateDefault State = iota
	StateHovered
	StateActive
)

// Colours are part of the user-visible contract.
var (
	ColorDefault = color.RGBA{0x00, 0x00, 0x00, 0xff} // #000000
	ColorHovered = color.RGBA{0xff, 0x00, 0x00, 0xff} // #ff0000
	ColorActive  = color.RGBA{0x2c, 0x52, 0x8c, 0xff} // #2c528c
)

func (s State) Color() color.RGBA {
	switch s {
	case StateActive:
		return ColorActive
	case StateHovered:
		return ColorHovered
	default:
		return ColorDefault
	}
}

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateHovered:
		return "hovered"
	default:
		return "default"
	}
}
