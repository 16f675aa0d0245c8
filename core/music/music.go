package music

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownDuration = errors.New("music: unknown duration")

// Duration is a note length class.
type Duration int

const (
	Whole Duration = iota
	Half
	Quarter
	Eighth
	Sixteenth
)

// Durations lists every duration, longest first.
var Durations = []Duration{Whole, Half, Quarter, Eighth, Sixteenth}

func (d Duration) String() string {
	switch d {
	case Whole:
		return "Whole"
	case Half:
		return "Half"
	case Quarter:
		return "Quarter"
	case Eighth:
		return "Eighth"
	case Sixteenth:
		return "Sixteenth"
	default:
		return "Unknown"
	}
}

// ParseDuration accepts the names produced by String, case-insensitively.
func ParseDuration(s string) (Duration, error) {
	for _, d := range Durations {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDuration, s)
}

// Beats is the duration's weight in quarter-note beats.
func (d Duration) Beats() float64 {
	switch d {
	case Whole:
		return 4
	case Half:
		return 2
	case Quarter:
		return 1
	case Eighth:
		return 0.5
	case Sixteenth:
		return 0.25
	default:
		return 0
	}
}

// BarCapacity is the nominal beat count of a 4/4 bar.
const BarCapacity = 4.0

// Pitch is a staff position: 0 sits on the bottom line, each step is one
// line or space upwards.
type Pitch int

const (
	MinPitch Pitch = -1
	MaxPitch Pitch = 9

	// PixelsPerStep is the vertical distance between adjacent pitches.
	PixelsPerStep = 5
)

// HeightFromPitch returns the glyph's vertical offset from the staff
// baseline. No clamping: callers keep pitch inside [MinPitch, MaxPitch].
func HeightFromPitch(p Pitch) float64 {
	return float64(p) * -PixelsPerStep
}

const (
	minHeight = -45
	maxHeight = 5
)

// PitchFromHeight inverts HeightFromPitch. Heights beyond the staff's
// ledger range are rejected rather than clamped, so dragging past the
// staff stops changing the pitch.
func PitchFromHeight(h float64) (Pitch, bool) {
	if h < minHeight || h > maxHeight {
		return 0, false
	}
	return Pitch(math.Floor(h / -PixelsPerStep)), true
}

// Kind tags a Note as a pitched note or a rest.
type Kind int

const (
	KindNote Kind = iota
	KindRest
)

func (k Kind) String() string {
	if k == KindRest {
		return "Rest"
	}
	return "Note"
}

// Note is either a pitched note or a rest. Rests carry no pitch.
type Note struct {
	kind     Kind
	duration Duration
	pitch    Pitch
}

func NewNote(d Duration, p Pitch) Note { return Note{kind: KindNote, duration: d, pitch: p} }
func NewRest(d Duration) Note          { return Note{kind: KindRest, duration: d} }

func (n Note) Kind() Kind         { return n.kind }
func (n Note) IsRest() bool       { return n.kind == KindRest }
func (n Note) Duration() Duration { return n.duration }

// SetDuration changes the length class of a note or rest.
func (n *Note) SetDuration(d Duration) { n.duration = d }

// Pitch returns the note's pitch; ok is false for rests.
func (n Note) Pitch() (p Pitch, ok bool) {
	if n.kind == KindRest {
		return 0, false
	}
	return n.pitch, true
}

// SetPitch changes the pitch of a note. Rests ignore it.
func (n *Note) SetPitch(p Pitch) {
	if n.kind == KindRest {
		return
	}
	n.pitch = p
}

// Height is HeightFromPitch for notes and 0 for rests.
func (n Note) Height() float64 {
	if p, ok := n.Pitch(); ok {
		return HeightFromPitch(p)
	}
	return 0
}

func (n Note) String() string {
	if n.kind == KindRest {
		return fmt.Sprintf("Rest(%s)", n.duration)
	}
	return fmt.Sprintf("Note(%s,%d)", n.duration, n.pitch)
}
