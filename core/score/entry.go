package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
)

// Property keys annotated onto every sequence entry.
const (
	KeyBarIdx = "barIdx"
	KeyValue  = "value"
	KeyPitch  = "pitch"
	KeyID     = "id"
	KeyActive = "isActive"
)

var (
	ErrMalformedEntry = errors.New("score: malformed entry")
	ErrNoEntry        = errors.New("score: no entry at position")
)

// Entry is the decoded form of one sequence element.
type Entry struct {
	BarIdx int
	Note   music.Note
	ID     uuid.UUID
	Active bool
}

// Props encodes e as a fresh property bag. Rests are written without a
// pitch key.
func (e Entry) Props() sharedseq.Props {
	p := sharedseq.Props{
		KeyBarIdx: e.BarIdx,
		KeyValue:  e.Note.Duration().String(),
		KeyID:     e.ID.String(),
	}
	if pitch, ok := e.Note.Pitch(); ok {
		p[KeyPitch] = int(pitch)
	}
	if e.Active {
		p[KeyActive] = true
	}
	return p
}

// Decode reads an entry from a property bag. Bags missing barIdx, value or
// id, or holding values of the wrong type, are malformed.
func Decode(p sharedseq.Props) (Entry, error) {
	var e Entry
	bar, ok := toInt(p[KeyBarIdx])
	if !ok {
		return e, fmt.Errorf("%w: barIdx=%v", ErrMalformedEntry, p[KeyBarIdx])
	}
	e.BarIdx = bar

	name, ok := p[KeyValue].(string)
	if !ok {
		return e, fmt.Errorf("%w: value=%v", ErrMalformedEntry, p[KeyValue])
	}
	d, err := music.ParseDuration(name)
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	raw, ok := p[KeyID].(string)
	if !ok {
		return e, fmt.Errorf("%w: id=%v", ErrMalformedEntry, p[KeyID])
	}
	if e.ID, err = uuid.Parse(raw); err != nil {
		return e, fmt.Errorf("%w: id %q: %v", ErrMalformedEntry, raw, err)
	}

	if v, present := p[KeyPitch]; present {
		pitch, ok := toInt(v)
		if !ok {
			return e, fmt.Errorf("%w: pitch=%v", ErrMalformedEntry, v)
		}
		e.Note = music.NewNote(d, music.Pitch(pitch))
	} else {
		e.Note = music.NewRest(d)
	}

	if v, present := p[KeyActive]; present {
		active, ok := v.(bool)
		if !ok {
			return e, fmt.Errorf("%w: isActive=%v", ErrMalformedEntry, v)
		}
		e.Active = active
	}
	return e, nil
}

// toInt accepts the integer encodings a bag can hold after travelling
// through JSON or staying in memory.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
