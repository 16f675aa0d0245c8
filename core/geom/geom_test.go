package geom

import "testing"

func TestBoxContainsInclusiveEdges(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 15, Height: 42}
	cases := []struct {
		p    Point
		want bool
	}{
		{Pt(10, 20), true},
		{Pt(25, 62), true},
		{Pt(17, 40), true},
		{Pt(9.9, 40), false},
		{Pt(25.1, 40), false},
		{Pt(17, 19.9), false},
		{Pt(17, 62.1), false},
	}
	for _, c := range cases {
		if got := b.Contains(c.p); got != c.want {
			t.Errorf("Contains(%v) = %t, want %t", c.p, got, c.want)
		}
	}
}

func TestBoxContainsHalfOpen(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 15, Height: 42}
	below := b.Translate(0, 42)
	right := b.Translate(15, 0)
	for _, p := range []Point{Pt(10, 20), Pt(17, 40), Pt(24.9, 61.9)} {
		if !b.ContainsHalfOpen(p) {
			t.Errorf("%v should be inside", p)
		}
	}
	for _, p := range []Point{Pt(17, 62), Pt(25, 40), Pt(25, 62)} {
		if b.ContainsHalfOpen(p) {
			t.Errorf("%v on the far edge should be outside", p)
		}
	}
	if !below.ContainsHalfOpen(Pt(17, 62)) || !right.ContainsHalfOpen(Pt(25, 40)) {
		t.Fatalf("shared edge should belong to the next box")
	}
}

func TestBoxOverlaps(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 10, Height: 10}
	if !a.Overlaps(Box{X: 5, Y: 5, Width: 10, Height: 10}) {
		t.Fatalf("expected overlap")
	}
	if a.Overlaps(Box{X: 10, Y: 0, Width: 10, Height: 10}) {
		t.Fatalf("touching boxes should not overlap")
	}
}

func TestVerticalDistance(t *testing.T) {
	if d := VerticalDistance(5, 10, 20); d != 5 {
		t.Errorf("above: got %v", d)
	}
	if d := VerticalDistance(15, 10, 20); d != 0 {
		t.Errorf("inside: got %v", d)
	}
	if d := VerticalDistance(32, 10, 20); d != 12 {
		t.Errorf("below: got %v", d)
	}
}

func TestAbs(t *testing.T) {
	if Abs(-3) != 3 || Abs(4) != 4 {
		t.Fatalf("Abs broken")
	}
}
