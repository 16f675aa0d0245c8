package glyph

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/ingyamilmolinar/staffline/core/geom"
)

type segKind byte

const (
	segMove  segKind = 'M'
	segLine  segKind = 'L'
	segCubic segKind = 'C'
	segClose segKind = 'Z'
)

type segment struct {
	kind segKind
	pts  [3]geom.Point
}

// Path is an SVG path reduced to absolute move/line/cubic/close segments.
type Path struct {
	segs []segment
}

// MustParsePath is ParsePath for the package's built-in glyph data.
func MustParsePath(d string) *Path {
	p, err := ParsePath(d)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePath reads SVG path data using the M, L, H, V, C and Z commands in
// absolute and relative form, including implicit command repetition.
func ParsePath(d string) (*Path, error) {
	s := &scanner{src: d}
	p := &Path{}
	var cur, start geom.Point
	var cmd byte
	for {
		s.skipSeparators()
		if s.done() {
			break
		}
		if c := s.peek(); isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("glyph: path must start with a command at %d", s.pos)
		}
		rel := cmd >= 'a'
		base := geom.Point{}
		if rel {
			base = cur
		}
		switch cmd {
		case 'M', 'm':
			pt, err := s.point(base)
			if err != nil {
				return nil, err
			}
			p.segs = append(p.segs, segment{kind: segMove, pts: [3]geom.Point{pt}})
			cur, start = pt, pt
			// extra coordinate pairs after a move are line-tos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			pt, err := s.point(base)
			if err != nil {
				return nil, err
			}
			p.segs = append(p.segs, segment{kind: segLine, pts: [3]geom.Point{pt}})
			cur = pt
		case 'H', 'h':
			x, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = geom.Pt(x, cur.Y)
			p.segs = append(p.segs, segment{kind: segLine, pts: [3]geom.Point{cur}})
		case 'V', 'v':
			y, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = geom.Pt(cur.X, y)
			p.segs = append(p.segs, segment{kind: segLine, pts: [3]geom.Point{cur}})
		case 'C', 'c':
			var pts [3]geom.Point
			for i := range pts {
				pt, err := s.point(base)
				if err != nil {
					return nil, err
				}
				pts[i] = pt
			}
			p.segs = append(p.segs, segment{kind: segCubic, pts: pts})
			cur = pts[2]
		case 'Z', 'z':
			p.segs = append(p.segs, segment{kind: segClose})
			cur = start
			cmd = 0
		default:
			return nil, fmt.Errorf("glyph: unsupported path command %q", cmd)
		}
	}
	if len(p.segs) == 0 {
		return nil, fmt.Errorf("glyph: empty path")
	}
	return p, nil
}

// Append adds the path to dc's current path without drawing it.
func (p *Path) Append(dc *gg.Context) {
	for _, s := range p.segs {
		switch s.kind {
		case segMove:
			dc.MoveTo(s.pts[0].X, s.pts[0].Y)
		case segLine:
			dc.LineTo(s.pts[0].X, s.pts[0].Y)
		case segCubic:
			dc.CubicTo(s.pts[0].X, s.pts[0].Y, s.pts[1].X, s.pts[1].Y, s.pts[2].X, s.pts[2].Y)
		case segClose:
			dc.ClosePath()
		}
	}
}

// Bounds is the box around every point of the path, control points
// included.
func (p *Path) Bounds() geom.Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range p.segs {
		n := 1
		switch s.kind {
		case segCubic:
			n = 3
		case segClose:
			n = 0
		}
		for _, pt := range s.pts[:n] {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}
	return geom.Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'Z', 'z':
		return true
	}
	return false
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }
func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) skipSeparators() {
	for !s.done() {
		switch s.peek() {
		case ' ', ',', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) point(base geom.Point) (geom.Point, error) {
	x, err := s.number()
	if err != nil {
		return geom.Point{}, err
	}
	y, err := s.number()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(base.X+x, base.Y+y), nil
}

// number reads one float. SVG lets numbers run together ("1.5-2", "1.5.5"),
// so a sign or a second dot ends the current number.
func (s *scanner) number() (float64, error) {
	s.skipSeparators()
	start := s.pos
	if !s.done() && (s.peek() == '-' || s.peek() == '+') {
		s.pos++
	}
	digits, dot := 0, false
scan:
	for !s.done() {
		c := s.peek()
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		case (c == 'e' || c == 'E') && digits > 0:
			s.pos++
			if !s.done() && (s.peek() == '-' || s.peek() == '+') {
				s.pos++
			}
			continue
		default:
			break scan
		}
		s.pos++
	}
	if digits == 0 {
		return 0, fmt.Errorf("glyph: expected number at %d in %q", start, s.src)
	}
	return strconv.ParseFloat(s.src[start:s.pos], 64)
}
