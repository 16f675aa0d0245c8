package score

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

const (
	MinNotesPerBar = 1
	MaxNotesPerBar = 8
)

// Sequence is the shared ordered collection backing a score. Positions are
// 0-based and shift under concurrent edits; only entry ids are stable. Do
// runs fn while no other goroutine can apply ops to the sequence.
type Sequence interface {
	sharedseq.Sequence
	Do(fn func(sharedseq.Sequence) error) error
}

// held is a sequence already inside Do; nested calls run inline.
type held struct{ sharedseq.Sequence }

func (h held) Do(fn func(sharedseq.Sequence) error) error { return fn(h.Sequence) }

// Score translates editing intents into position-based mutations of the
// shared sequence. It holds no copy of the notes: every call re-reads the
// sequence so remote edits are picked up immediately.
type Score struct {
	seq    Sequence
	logger *game_log.Logger

	// NewID mints ids for inserted entries.
	NewID func() uuid.UUID
}

func New(seq Sequence, logger *game_log.Logger) *Score {
	return &Score{seq: seq, logger: logger.Tag("SCORE"), NewID: uuid.New}
}

func (s *Score) Len() int { return s.seq.Len() }

// EntryAt decodes the entry currently at pos.
func (s *Score) EntryAt(pos int) (Entry, error) {
	p, ok := s.seq.PropsAt(pos)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrNoEntry, pos)
	}
	e, err := Decode(p)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", pos, err)
	}
	return e, nil
}

// entries decodes the whole sequence, stopping at the first malformed entry.
func (s *Score) entries() ([]Entry, error) {
	n := s.seq.Len()
	out := make([]Entry, 0, n)
	for pos := 0; pos < n; pos++ {
		e, err := s.EntryAt(pos)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// findIndexByID scans the sequence for id. It is O(n) and runs on every
// click and drag tick. Malformed entries are skipped.
func (s *Score) findIndexByID(id uuid.UUID) (int, bool) {
	if id == uuid.Nil {
		return 0, false
	}
	want := id.String()
	n := s.seq.Len()
	for pos := 0; pos < n; pos++ {
		p, ok := s.seq.PropsAt(pos)
		if !ok {
			break
		}
		if raw, _ := p[KeyID].(string); raw == want {
			return pos, true
		}
	}
	return 0, false
}

// activeIndex returns the first entry flagged active.
func (s *Score) activeIndex() (int, bool) {
	n := s.seq.Len()
	for pos := 0; pos < n; pos++ {
		p, ok := s.seq.PropsAt(pos)
		if !ok {
			break
		}
		if active, _ := p[KeyActive].(bool); active {
			return pos, true
		}
	}
	return 0, false
}

// activeID returns the id of the active entry, if any.
func (s *Score) activeID() (uuid.UUID, bool) {
	pos, ok := s.activeIndex()
	if !ok {
		return uuid.Nil, false
	}
	e, err := s.EntryAt(pos)
	if err != nil {
		return uuid.Nil, false
	}
	return e.ID, true
}

// lastBarIdx is the bar index of the final entry.
func (s *Score) lastBarIdx() (int, bool) {
	n := s.seq.Len()
	if n == 0 {
		return 0, false
	}
	p, ok := s.seq.PropsAt(n - 1)
	if !ok {
		return 0, false
	}
	return toInt(p[KeyBarIdx])
}

func (s *Score) barIdxAt(pos int) (int, bool) {
	p, ok := s.seq.PropsAt(pos)
	if !ok {
		return 0, false
	}
	return toInt(p[KeyBarIdx])
}

// barExtent returns the half-open range [start, end) of the bar that
// contains pos, found by walking outwards while barIdx matches.
func (s *Score) barExtent(pos int) (start, end int) {
	bar, ok := s.barIdxAt(pos)
	if !ok {
		return pos, pos
	}
	start = pos
	for start > 0 {
		if b, ok := s.barIdxAt(start - 1); !ok || b != bar {
			break
		}
		start--
	}
	end = pos + 1
	for {
		if b, ok := s.barIdxAt(end); !ok || b != bar {
			break
		}
		end++
	}
	return start, end
}

// addNote inserts a default quarter note right after the active entry, in
// the same bar. It is refused when the bar already holds MaxNotesPerBar.
func (s *Score) addNote(activeID uuid.UUID) (bool, error) {
	pos, ok := s.findIndexByID(activeID)
	if !ok {
		return false, nil
	}
	active, err := s.EntryAt(pos)
	if err != nil {
		return false, err
	}
	start, end := s.barExtent(pos)
	if end-start >= MaxNotesPerBar {
		s.logger.Debugf("add refused: bar %d already has %d notes", active.BarIdx, end-start)
		return false, nil
	}
	e := Entry{BarIdx: active.BarIdx, Note: music.NewNote(music.Quarter, 0), ID: s.NewID()}
	if _, err := s.seq.Insert(pos+1, e.Props()); err != nil {
		return false, fmt.Errorf("add note after %d: %w", pos, err)
	}
	s.logger.Debugf("added %s in bar %d at %d", e.ID, e.BarIdx, pos+1)
	return true, nil
}

// deleteNote removes the active entry unless it is the last one in its
// bar. Removing the entry also drops the selection it carried.
func (s *Score) deleteNote(activeID uuid.UUID) (bool, error) {
	pos, ok := s.findIndexByID(activeID)
	if !ok {
		return false, nil
	}
	start, end := s.barExtent(pos)
	if end-start <= MinNotesPerBar {
		s.logger.Debugf("delete refused: %s is the only note in its bar", activeID)
		return false, nil
	}
	if err := s.seq.Remove(pos, pos+1); err != nil {
		return false, fmt.Errorf("delete note %d: %w", pos, err)
	}
	s.logger.Debugf("deleted %s at %d", activeID, pos)
	return true, nil
}

// setActive moves the selection to id, or clears it when id is uuid.Nil or
// no longer present. Every entry still flagged active is cleared first, so
// a doubly-active state left by concurrent selections heals here. The
// clear and the set are separate mutations; remote peers may observe the
// gap between them.
func (s *Score) setActive(id uuid.UUID) error {
	target, found := s.findIndexByID(id)
	n := s.seq.Len()
	for pos := 0; pos < n; pos++ {
		if found && pos == target {
			continue
		}
		p, ok := s.seq.PropsAt(pos)
		if !ok {
			break
		}
		if active, _ := p[KeyActive].(bool); !active {
			continue
		}
		if err := s.seq.Annotate(pos, pos+1, sharedseq.Props{KeyActive: false}); err != nil {
			return fmt.Errorf("clear active %d: %w", pos, err)
		}
	}
	if !found {
		return nil
	}
	if p, ok := s.seq.PropsAt(target); ok {
		if active, _ := p[KeyActive].(bool); active {
			return nil
		}
	}
	if err := s.seq.Annotate(target, target+1, sharedseq.Props{KeyActive: true}); err != nil {
		return fmt.Errorf("set active %d: %w", target, err)
	}
	s.logger.Debugf("active -> %s at %d", id, target)
	return nil
}

// ClearActive drops the selection.
func (s *Score) ClearActive() error { return s.SetActive(uuid.Nil) }

// setPitchByDrag maps a canvas pointer y to a pitch for the active note.
// The sequence is only written when the pitch actually changes and the
// entry is a note; rests and pointers off the staff are ignored.
func (s *Score) setPitchByDrag(activeID uuid.UUID, pointerY float64) (bool, error) {
	pos, ok := s.findIndexByID(activeID)
	if !ok {
		return false, nil
	}
	e, err := s.EntryAt(pos)
	if err != nil {
		return false, err
	}
	current, ok := e.Note.Pitch()
	if !ok {
		return false, nil
	}
	h := pointerY - RowTop(e.BarIdx) - DragBaseline
	p, ok := music.PitchFromHeight(h)
	if !ok || p == current {
		return false, nil
	}
	if err := s.seq.Annotate(pos, pos+1, sharedseq.Props{KeyPitch: int(p)}); err != nil {
		return false, fmt.Errorf("set pitch %d: %w", pos, err)
	}
	s.logger.Debugf("pitch %s: %d -> %d", activeID, current, p)
	return true, nil
}

// setValue changes the active entry's duration.
func (s *Score) setValue(activeID uuid.UUID, d music.Duration) (bool, error) {
	pos, ok := s.findIndexByID(activeID)
	if !ok {
		return false, nil
	}
	e, err := s.EntryAt(pos)
	if err != nil {
		return false, err
	}
	if e.Note.Duration() == d {
		return false, nil
	}
	if err := s.seq.Annotate(pos, pos+1, sharedseq.Props{KeyValue: d.String()}); err != nil {
		return false, fmt.Errorf("set value %d: %w", pos, err)
	}
	return true, nil
}

// toggleRest turns the active note into a rest of the same duration, or a
// rest back into a note at pitch 0.
func (s *Score) toggleRest(activeID uuid.UUID) (bool, error) {
	pos, ok := s.findIndexByID(activeID)
	if !ok {
		return false, nil
	}
	e, err := s.EntryAt(pos)
	if err != nil {
		return false, err
	}
	props := sharedseq.Props{KeyPitch: nil}
	if e.Note.IsRest() {
		props[KeyPitch] = 0
	}
	if err := s.seq.Annotate(pos, pos+1, props); err != nil {
		return false, fmt.Errorf("toggle rest %d: %w", pos, err)
	}
	return true, nil
}

// seedDurations are the lengths used for generated scores.
var seedDurations = []music.Duration{music.Whole, music.Half, music.Quarter}

// seed fills an empty sequence with bars of random notes, each bar
// summing to BarCapacity beats. A non-empty sequence is left untouched so a
// client rejoining an existing container does not add a second score.
func (s *Score) seed(rng *rand.Rand, bars int) (int, error) {
	if n := s.seq.Len(); n > 0 {
		s.logger.Infof("seed skipped: sequence already holds %d entries", n)
		return 0, nil
	}
	pos := 0
	for bar := 0; bar < bars; bar++ {
		remaining := music.BarCapacity
		for remaining > 0 {
			var fits []music.Duration
			for _, d := range seedDurations {
				if d.Beats() <= remaining {
					fits = append(fits, d)
				}
			}
			d := fits[rng.Intn(len(fits))]
			remaining -= d.Beats()
			e := Entry{
				BarIdx: bar,
				Note:   music.NewNote(d, music.Pitch(rng.Intn(8))),
				ID:     s.NewID(),
			}
			if _, err := s.seq.Insert(pos, e.Props()); err != nil {
				return pos, fmt.Errorf("seed bar %d: %w", bar, err)
			}
			pos++
		}
	}
	s.logger.Infof("seeded %d bars, %d notes", bars, pos)
	return pos, nil
}
