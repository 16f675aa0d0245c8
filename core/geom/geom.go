package geom

import "math"

// Point is a position in canvas pixel space.
type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Box is an axis-aligned bounding box in canvas pixel space.
type Box struct {
	X, Y          float64
	Width, Height float64
}

func (b Box) MaxX() float64 { return b.X + b.Width }
func (b Box) MaxY() float64 { return b.Y + b.Height }

// Contains reports whether p lies inside b. Edges are inclusive on all
// four sides so a pointer resting on a glyph's outline still hits it.
func (b Box) Contains(p Point) bool {
	return b.X <= p.X && b.MaxX() >= p.X && b.Y <= p.Y && b.MaxY() >= p.Y
}

// ContainsHalfOpen is Contains with the right and bottom edges excluded, so
// boxes that tile the plane claim every point exactly once.
func (b Box) ContainsHalfOpen(p Point) bool {
	return b.X <= p.X && p.X < b.MaxX() && b.Y <= p.Y && p.Y < b.MaxY()
}

// Overlaps reports whether b and o share any area.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.MaxX() && o.X < b.MaxX() && b.Y < o.MaxY() && o.Y < b.MaxY()
}

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	b.X += dx
	b.Y += dy
	return b
}

// VerticalDistance is how far y lies outside [top, bottom]; zero when inside.
func VerticalDistance(y, top, bottom float64) float64 {
	switch {
	case y < top:
		return top - y
	case y > bottom:
		return y - bottom
	default:
		return 0
	}
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Round snaps v to the nearest integer pixel.
func Round(v float64) float64 { return math.Round(v) }
