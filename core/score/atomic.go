package score

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/music"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
)

// Atomic runs fn against a view of the score that ops applied by other
// goroutines cannot change until fn returns. Every exported lookup and
// edit below goes through it, so a position found by id is still the
// entry's position when it is written. Calls nest.
func (s *Score) Atomic(fn func(*Score) error) error {
	if _, ok := s.seq.(held); ok {
		return fn(s)
	}
	return s.seq.Do(func(seq sharedseq.Sequence) error {
		return fn(&Score{seq: held{seq}, logger: s.logger, NewID: s.NewID})
	})
}

// Entries decodes the whole sequence, stopping at the first malformed entry.
func (s *Score) Entries() (out []Entry, err error) {
	err = s.Atomic(func(s *Score) error {
		out, err = s.entries()
		return err
	})
	return out, err
}

// FindIndexByID scans the sequence for id. It is O(n) and runs on every
// click and drag tick. Malformed entries are skipped.
func (s *Score) FindIndexByID(id uuid.UUID) (pos int, ok bool) {
	s.Atomic(func(s *Score) error {
		pos, ok = s.findIndexByID(id)
		return nil
	})
	return pos, ok
}

// ActiveIndex returns the first entry flagged active.
func (s *Score) ActiveIndex() (pos int, ok bool) {
	s.Atomic(func(s *Score) error {
		pos, ok = s.activeIndex()
		return nil
	})
	return pos, ok
}

// ActiveID returns the id of the active entry, if any.
func (s *Score) ActiveID() (id uuid.UUID, ok bool) {
	s.Atomic(func(s *Score) error {
		id, ok = s.activeID()
		return nil
	})
	return id, ok
}

// LastBarIdx is the bar index of the final entry.
func (s *Score) LastBarIdx() (bar int, ok bool) {
	s.Atomic(func(s *Score) error {
		bar, ok = s.lastBarIdx()
		return nil
	})
	return bar, ok
}

// BarExtent returns the half-open range [start, end) of the bar that
// contains pos.
func (s *Score) BarExtent(pos int) (start, end int) {
	s.Atomic(func(s *Score) error {
		start, end = s.barExtent(pos)
		return nil
	})
	return start, end
}

// AddNote inserts a default quarter note right after the active entry, in
// the same bar. It is refused when the bar already holds MaxNotesPerBar.
func (s *Score) AddNote(activeID uuid.UUID) (added bool, err error) {
	err = s.Atomic(func(s *Score) error {
		added, err = s.addNote(activeID)
		return err
	})
	return added, err
}

// DeleteNote removes the active entry unless it is the last one in its
// bar.
func (s *Score) DeleteNote(activeID uuid.UUID) (deleted bool, err error) {
	err = s.Atomic(func(s *Score) error {
		deleted, err = s.deleteNote(activeID)
		return err
	})
	return deleted, err
}

// SetActive moves the selection to id, or clears it when id is uuid.Nil or
// no longer present.
func (s *Score) SetActive(id uuid.UUID) error {
	return s.Atomic(func(s *Score) error { return s.setActive(id) })
}

// SetPitchByDrag maps a canvas pointer y to a pitch for the active note.
func (s *Score) SetPitchByDrag(activeID uuid.UUID, pointerY float64) (changed bool, err error) {
	err = s.Atomic(func(s *Score) error {
		changed, err = s.setPitchByDrag(activeID, pointerY)
		return err
	})
	return changed, err
}

// SetValue changes the active entry's duration.
func (s *Score) SetValue(activeID uuid.UUID, d music.Duration) (changed bool, err error) {
	err = s.Atomic(func(s *Score) error {
		changed, err = s.setValue(activeID, d)
		return err
	})
	return changed, err
}

// ToggleRest turns the active note into a rest, or a rest back into a note.
func (s *Score) ToggleRest(activeID uuid.UUID) (changed bool, err error) {
	err = s.Atomic(func(s *Score) error {
		changed, err = s.toggleRest(activeID)
		return err
	})
	return changed, err
}

// Seed fills an empty sequence with generated bars.
func (s *Score) Seed(rng *rand.Rand, bars int) (n int, err error) {
	err = s.Atomic(func(s *Score) error {
		n, err = s.seed(rng, bars)
		return err
	})
	return n, err
}
