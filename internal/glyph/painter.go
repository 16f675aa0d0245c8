package glyph

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Painter draws a glyph with its tile origin at (x, y).
type Painter interface {
	Paint(dc *gg.Context, g *Glyph, x, y float64, c color.Color)
}

// VectorPainter rasterises the outline on every call, in any colour.
type VectorPainter struct {
	LineWidth float64
}

func (v VectorPainter) Paint(dc *gg.Context, g *Glyph, x, y float64, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(v.LineWidth)
	g.Trace(dc, x, y)
}

// RasterPainter renders each glyph once into an offscreen tile in a fixed
// colour and blits the tile afterwards. The colour passed to Paint is
// ignored: the tile keeps the colour it was baked in.
type RasterPainter struct {
	Color     color.Color
	LineWidth float64

	tiles map[string]image.Image
}

func NewRasterPainter(c color.Color, lineWidth float64) *RasterPainter {
	return &RasterPainter{Color: c, LineWidth: lineWidth, tiles: map[string]image.Image{}}
}

// Paint blits the tile at the nearest whole pixel, so a note keeps its
// place when it switches between the raster and vector painters.
func (r *RasterPainter) Paint(dc *gg.Context, g *Glyph, x, y float64, _ color.Color) {
	dc.DrawImage(r.Tile(g), int(math.Round(x)), int(math.Round(y)))
}

// Tile returns the cached bitmap for g, rendering it on first use.
func (r *RasterPainter) Tile(g *Glyph) image.Image {
	if img, ok := r.tiles[g.Name]; ok {
		return img
	}
	tc := gg.NewContext(TileSize, TileSize)
	VectorPainter{LineWidth: r.LineWidth}.Paint(tc, g, 0, 0, r.Color)
	img := tc.Image()
	r.tiles[g.Name] = img
	return img
}

// Cached reports how many tiles have been rendered.
func (r *RasterPainter) Cached() int { return len(r.tiles) }

// Strategy routes the common unselected state to the cached bitmaps and
// the recoloured states to the vector path.
type Strategy struct {
	Raster Painter
	Vector Painter
}

// DefaultLineWidth is the stem width used by the editor.
const DefaultLineWidth = 1.5

func NewStrategy() Strategy {
	return Strategy{
		Raster: NewRasterPainter(ColorDefault, DefaultLineWidth),
		Vector: VectorPainter{LineWidth: DefaultLineWidth},
	}
}

func (s Strategy) For(state State) Painter {
	if state == StateDefault {
		return s.Raster
	}
	return s.Vector
}

// Paint draws g in the colour of state using the matching painter.
func (s Strategy) Paint(dc *gg.Context, g *Glyph, x, y float64, state State) {
	s.For(state).Paint(dc, g, x, y, state.Color())
}
