package glyph

import (
	"image/color"
	"math"
	"testing"

	"github.com/fogleman/gg"
	"github.com/ingyamilmolinar/staffline/core/music"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParsePathRelativeAndRunTogether(t *testing.T) {
	p, err := ParsePath("m10 20l5-5h3v-2.5.5z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.segs) != 6 {
		t.Fatalf("segments = %d, want 6", len(p.segs))
	}
	want := [][2]float64{{10, 20}, {15, 15}, {18, 15}, {18, 12.5}}
	for i, w := range want {
		got := p.segs[i].pts[0]
		if !near(got.X, w[0]) || !near(got.Y, w[1]) {
			t.Fatalf("seg %d = %+v, want %v", i, got, w)
		}
	}
	// ".5" after "-2.5" is an implicit second v command
	if got := p.segs[4].pts[0]; !near(got.Y, 13) {
		t.Fatalf("implicit v ended at %+v", got)
	}
	if p.segs[5].kind != segClose {
		t.Fatalf("last segment should close the path")
	}
}

func TestParsePathImplicitLineAfterMove(t *testing.T) {
	p := MustParsePath("M 0,0 10,0 10,10")
	if p.segs[1].kind != segLine || p.segs[2].kind != segLine {
		t.Fatalf("pairs after M should be line-tos: %+v", p.segs)
	}
}

func TestParsePathRelativeCubicUsesSegmentStart(t *testing.T) {
	p := MustParsePath("m0 0c1 1 2 2 3 3 1 1 2 2 3 3")
	last := p.segs[len(p.segs)-1]
	if !near(last.pts[2].X, 6) || !near(last.pts[0].X, 4) {
		t.Fatalf("second cubic should be relative to (3,3): %+v", last.pts)
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{"", "10 10", "M 1", "M 1 2 Q 3 4 5 6"} {
		if _, err := ParsePath(d); err == nil {
			t.Fatalf("ParsePath(%q) should fail", d)
		}
	}
}

func TestBounds(t *testing.T) {
	b := wholeRest.Fills[0].Bounds()
	if b.X != 3 || b.Y != 20 || b.Width != 14 || b.Height != 5 {
		t.Fatalf("bounds = %+v", b)
	}
}

func TestForPicksByKindAndDuration(t *testing.T) {
	cases := []struct {
		n    music.Note
		want string
	}{
		{music.NewNote(music.Whole, 0), "whole"},
		{music.NewNote(music.Half, 3), "half"},
		{music.NewNote(music.Quarter, 1), "quarter"},
		{music.NewNote(music.Eighth, 1), "quarter"},
		{music.NewNote(music.Sixteenth, 1), "quarter"},
		{music.NewRest(music.Whole), "whole-rest"},
		{music.NewRest(music.Half), "half-rest"},
		{music.NewRest(music.Eighth), "quarter-rest"},
	}
	for _, c := range cases {
		if got := For(c.n).Name; got != c.want {
			t.Errorf("For(%s) = %s, want %s", c.n, got, c.want)
		}
	}
}

func TestStateColors(t *testing.T) {
	if StateDefault.Color() != (color.RGBA{0, 0, 0, 0xff}) {
		t.Fatalf("default colour")
	}
	if StateHovered.Color() != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Fatalf("hover colour")
	}
	if StateActive.Color() != (color.RGBA{0x2c, 0x52, 0x8c, 0xff}) {
		t.Fatalf("active colour")
	}
}

func TestVectorPainterDrawsAtOffset(t *testing.T) {
	dc := gg.NewContext(200, 200)
	VectorPainter{LineWidth: 1}.Paint(dc, wholeRest, 50, 50, ColorActive)
	r, g, b, a := dc.Image().At(60, 72).RGBA()
	if a == 0 || r>>8 != 0x2c || g>>8 != 0x52 || b>>8 != 0x8c {
		t.Fatalf("pixel inside rest = %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
	if _, _, _, a := dc.Image().At(10, 22).RGBA(); a != 0 {
		t.Fatalf("glyph leaked outside its offset")
	}
}

func TestEveryGlyphInksItsTile(t *testing.T) {
	for _, g := range All() {
		dc := gg.NewContext(TileSize, TileSize)
		VectorPainter{LineWidth: DefaultLineWidth}.Paint(dc, g, 0, 0, ColorDefault)
		img := dc.Image()
		inked := false
		for y := 0; y < TileSize && !inked; y++ {
			for x := 0; x < TileSize; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
					inked = true
					break
				}
			}
		}
		if !inked {
			t.Errorf("%s draws nothing inside its tile", g.Name)
		}
	}
}

func TestRasterPainterCachesTiles(t *testing.T) {
	r := NewRasterPainter(ColorDefault, 1)
	first := r.Tile(quarterNote)
	if r.Tile(quarterNote) != first {
		t.Fatalf("second lookup should reuse the tile")
	}
	r.Tile(halfNote)
	if r.Cached() != 2 {
		t.Fatalf("cached = %d, want 2", r.Cached())
	}
	dc := gg.NewContext(300, 300)
	for i := 0; i < 5; i++ {
		r.Paint(dc, quarterNote, float64(i*20), 0, ColorHovered)
	}
	if r.Cached() != 2 {
		t.Fatalf("painting should not grow the cache: %d", r.Cached())
	}
}

type recordingPainter struct {
	name  string
	calls *[]string
}

func (p recordingPainter) Paint(_ *gg.Context, g *Glyph, _, _ float64, _ color.Color) {
	*p.calls = append(*p.calls, p.name+":"+g.Name)
}

func TestStrategyRoutesByState(t *testing.T) {
	var calls []string
	s := Strategy{
		Raster: recordingPainter{"raster", &calls},
		Vector: recordingPainter{"vector", &calls},
	}
	dc := gg.NewContext(10, 10)
	s.Paint(dc, halfNote, 0, 0, StateDefault)
	s.Paint(dc, halfNote, 0, 0, StateHovered)
	s.Paint(dc, halfNote, 0, 0, StateActive)
	want := []string{"raster:half", "vector:half", "vector:half"}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

// inkCentroid is the alpha-weighted centre of everything drawn on img.
func inkCentroid(dc *gg.Context) (float64, float64) {
	img := dc.Image()
	var sx, sy, total float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			w := float64(a)
			sx += w * (float64(x) + 0.5)
			sy += w * (float64(y) + 0.5)
			total += w
		}
	}
	return sx / total, sy / total
}

func TestRasterAndVectorAgreeOnFractionalPositions(t *testing.T) {
	r := NewRasterPainter(ColorDefault, DefaultLineWidth)
	for _, g := range []*Glyph{wholeRest, quarterRest} {
		for _, pos := range [][2]float64{{10.7, 20.7}, {302.86, 40.3}, {12, 8}} {
			raster := gg.NewContext(500, 200)
			r.Paint(raster, g, pos[0], pos[1], ColorDefault)
			vector := gg.NewContext(500, 200)
			VectorPainter{LineWidth: DefaultLineWidth}.Paint(vector, g, pos[0], pos[1], ColorDefault)

			rx, ry := inkCentroid(raster)
			vx, vy := inkCentroid(vector)
			if math.Abs(rx-vx) > 0.5 || math.Abs(ry-vy) > 0.5 {
				t.Errorf("%s at %v: raster centre (%.2f,%.2f), vector (%.2f,%.2f)", g.Name, pos, rx, ry, vx, vy)
			}
		}
	}
}
