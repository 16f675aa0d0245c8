package music

import (
	"errors"
	"testing"
)

func TestPitchHeightRoundTrip(t *testing.T) {
	for p := MinPitch; p <= MaxPitch; p++ {
		got, ok := PitchFromHeight(HeightFromPitch(p))
		if !ok {
			t.Fatalf("pitch %d: height %v rejected", p, HeightFromPitch(p))
		}
		if got != p {
			t.Errorf("round trip of %d gave %d", p, got)
		}
	}
}

func TestPitchFromHeightRejectsOutsideStaff(t *testing.T) {
	for _, h := range []float64{-45.5, -50, -1000, 5.01, 6, 300} {
		if p, ok := PitchFromHeight(h); ok {
			t.Errorf("PitchFromHeight(%v) = %d, want rejection", h, p)
		}
	}
	for _, h := range []float64{-45, 5} {
		if _, ok := PitchFromHeight(h); !ok {
			t.Errorf("PitchFromHeight(%v) rejected, want accepted", h)
		}
	}
}

func TestPitchFromHeightBuckets(t *testing.T) {
	cases := []struct {
		h    float64
		want Pitch
	}{
		{0, 0},
		{-1, 0},
		{-4.9, 0},
		{-5, 1},
		{-14, 2},
		{-15, 3},
		{4, -1},
		{-45, 9},
	}
	for _, c := range cases {
		got, ok := PitchFromHeight(c.h)
		if !ok || got != c.want {
			t.Errorf("PitchFromHeight(%v) = %d,%t want %d", c.h, got, ok, c.want)
		}
	}
}

func TestRestHasNoPitch(t *testing.T) {
	r := NewRest(Half)
	if _, ok := r.Pitch(); ok {
		t.Fatalf("rest reported a pitch")
	}
	r.SetPitch(4)
	if _, ok := r.Pitch(); ok {
		t.Fatalf("SetPitch on a rest must be a no-op")
	}
	if r.Height() != 0 {
		t.Fatalf("rest height = %v, want 0", r.Height())
	}

	n := NewNote(Quarter, 2)
	n.SetPitch(5)
	if p, ok := n.Pitch(); !ok || p != 5 {
		t.Fatalf("note pitch = %d,%t want 5", p, ok)
	}
	if n.Height() != -25 {
		t.Fatalf("note height = %v, want -25", n.Height())
	}
}

func TestParseDuration(t *testing.T) {
	for _, d := range Durations {
		got, err := ParseDuration(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDuration(%q) = %v,%v", d.String(), got, err)
		}
	}
	if _, err := ParseDuration("quarter"); err != nil {
		t.Errorf("case-insensitive parse failed: %v", err)
	}
	if _, err := ParseDuration("Breve"); !errors.Is(err, ErrUnknownDuration) {
		t.Errorf("want ErrUnknownDuration, got %v", err)
	}
}

func TestBeats(t *testing.T) {
	total := 0.0
	for _, d := range []Duration{Half, Quarter, Eighth, Sixteenth, Sixteenth} {
		total += d.Beats()
	}
	if total != BarCapacity {
		t.Fatalf("beats sum = %v, want %v", total, BarCapacity)
	}
}
