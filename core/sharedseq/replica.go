package sharedseq

import (
	"fmt"
	"sync"

	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

// Sequence is the position-based editing surface of a replica. Positions
// count visible elements only.
type Sequence interface {
	Len() int
	Insert(pos int, props Props) (Stamp, error)
	Remove(start, end int) error
	Annotate(start, end int, props Props) error
	PropsAt(pos int) (Props, bool)
}

type element struct {
	id      Stamp
	props   Props
	written map[string]Stamp
	deleted bool
}

// Entry is a visible element and a copy of its properties.
type Entry struct {
	ID    Stamp
	Props Props
}

// Replica is one client's copy of the shared sequence. Elements are kept in
// document order including tombstones; positions passed to the public
// methods count visible elements only.
//
// Inserts follow the RGA rule and property writes are last-writer-wins per
// key, so replicas that applied the same set of ops agree on order and
// properties no matter which order the ops arrived in.
type Replica struct {
	mu      sync.RWMutex
	client  ClientID
	clock   uint64
	elems   []*element
	byID    map[Stamp]*element
	outbox  []Op
	version uint64
	logger  *game_log.Logger
}

func NewReplica(client ClientID, logger *game_log.Logger) *Replica {
	return &Replica{
		client: client,
		byID:   map[Stamp]*element{},
		logger: logger.Tag("SEQ"),
	}
}

func (r *Replica) ClientID() ClientID { return r.client }

// Version increases every time an op changes the replica.
func (r *Replica) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Replica) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visibleLen()
}

// Do runs fn with the replica locked, so a multi-step edit sees no ops
// applied by other goroutines in between. fn must only use the Sequence it
// is given; calling the Replica's own methods from fn deadlocks.
func (r *Replica) Do(fn func(Sequence) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(lockedReplica{r})
}

// lockedReplica is the view handed to Do.
type lockedReplica struct{ r *Replica }

func (l lockedReplica) Len() int {
	return l.r.visibleLen()
}

func (l lockedReplica) PropsAt(pos int) (Props, bool) {
	return l.r.propsAt(pos)
}

func (l lockedReplica) Insert(pos int, props Props) (Stamp, error) {
	return l.r.insert(pos, props)
}

func (l lockedReplica) Remove(start, end int) error {
	return l.r.remove(start, end)
}

func (l lockedReplica) Annotate(start, end int, props Props) error {
	return l.r.annotate(start, end, props)
}

func (r *Replica) visibleLen() int {
	n := 0
	for _, e := range r.elems {
		if !e.deleted {
			n++
		}
	}
	return n
}

// visibleAt returns the document index of the pos-th visible element.
func (r *Replica) visibleAt(pos int) (int, bool) {
	if pos < 0 {
		return 0, false
	}
	for i, e := range r.elems {
		if e.deleted {
			continue
		}
		if pos == 0 {
			return i, true
		}
		pos--
	}
	return 0, false
}

// PropsAt returns a copy of the properties of the element at pos.
func (r *Replica) PropsAt(pos int) (Props, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.propsAt(pos)
}

func (r *Replica) propsAt(pos int) (Props, bool) {
	i, ok := r.visibleAt(pos)
	if !ok {
		return nil, false
	}
	return r.elems[i].props.Clone(), true
}

// Entries returns every visible element in order.
func (r *Replica) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.elems))
	for _, e := range r.elems {
		if !e.deleted {
			out = append(out, Entry{ID: e.id, Props: e.props.Clone()})
		}
	}
	return out
}

func (r *Replica) nextStamp() Stamp {
	r.clock++
	return Stamp{Lamport: r.clock, Client: r.client}
}

// Insert places a new element with props so that it ends up at pos.
func (r *Replica) Insert(pos int, props Props) (Stamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(pos, props)
}

func (r *Replica) insert(pos int, props Props) (Stamp, error) {
	n := r.visibleLen()
	if pos < 0 || pos > n {
		return Stamp{}, fmt.Errorf("%w: insert at %d of %d", ErrOutOfRange, pos, n)
	}
	var anchor Stamp
	if pos > 0 {
		i, _ := r.visibleAt(pos - 1)
		anchor = r.elems[i].id
	}
	op := Op{Kind: OpInsert, Stamp: r.nextStamp(), Target: anchor, Props: props.Clone()}
	if err := r.apply(op); err != nil {
		return Stamp{}, err
	}
	r.outbox = append(r.outbox, op)
	return op.Stamp, nil
}

// Remove deletes the visible elements in [start, end).
func (r *Replica) Remove(start, end int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(start, end)
}

func (r *Replica) remove(start, end int) error {
	targets, err := r.rangeIDs(start, end)
	if err != nil {
		return err
	}
	for _, id := range targets {
		op := Op{Kind: OpRemove, Stamp: r.nextStamp(), Target: id}
		if err := r.apply(op); err != nil {
			return err
		}
		r.outbox = append(r.outbox, op)
	}
	return nil
}

// Annotate merges props into every visible element in [start, end).
func (r *Replica) Annotate(start, end int, props Props) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.annotate(start, end, props)
}

func (r *Replica) annotate(start, end int, props Props) error {
	targets, err := r.rangeIDs(start, end)
	if err != nil {
		return err
	}
	for _, id := range targets {
		op := Op{Kind: OpAnnotate, Stamp: r.nextStamp(), Target: id, Props: props.Clone()}
		if err := r.apply(op); err != nil {
			return err
		}
		r.outbox = append(r.outbox, op)
	}
	return nil
}

func (r *Replica) rangeIDs(start, end int) ([]Stamp, error) {
	n := r.visibleLen()
	if start < 0 || end > n || start >= end {
		return nil, fmt.Errorf("%w: range [%d,%d) of %d", ErrOutOfRange, start, end, n)
	}
	ids := make([]Stamp, 0, end-start)
	for pos := start; pos < end; pos++ {
		i, _ := r.visibleAt(pos)
		ids = append(ids, r.elems[i].id)
	}
	return ids, nil
}

// Apply integrates an op produced by another replica. Re-applying an op
// that is already integrated has no effect.
func (r *Replica) Apply(op Op) error {
	if err := op.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if op.Stamp.Lamport > r.clock {
		r.clock = op.Stamp.Lamport
	}
	return r.apply(op)
}

func (r *Replica) apply(op Op) error {
	switch op.Kind {
	case OpInsert:
		if _, dup := r.byID[op.Stamp]; dup {
			return nil
		}
		at := 0
		if !op.Target.IsZero() {
			i := r.indexOf(op.Target)
			if i < 0 {
				return fmt.Errorf("%w: insert anchor %s", ErrUnknownElement, op.Target)
			}
			at = i + 1
		}
		// concurrent inserts after the same anchor: larger stamps stay first
		for at < len(r.elems) && op.Stamp.Less(r.elems[at].id) {
			at++
		}
		e := &element{id: op.Stamp, props: Props{}, written: map[string]Stamp{}}
		r.write(e, op.Stamp, op.Props)
		r.elems = append(r.elems, nil)
		copy(r.elems[at+1:], r.elems[at:])
		r.elems[at] = e
		r.byID[op.Stamp] = e
	case OpRemove:
		e, ok := r.byID[op.Target]
		if !ok {
			return fmt.Errorf("%w: remove %s", ErrUnknownElement, op.Target)
		}
		if e.deleted {
			return nil
		}
		e.deleted = true
	case OpAnnotate:
		e, ok := r.byID[op.Target]
		if !ok {
			return fmt.Errorf("%w: annotate %s", ErrUnknownElement, op.Target)
		}
		if !r.write(e, op.Stamp, op.Props) {
			return nil
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrBadOp, op.Kind)
	}
	r.version++
	r.logger.Debugf("applied %s %s -> %s (v%d)", op.Kind, op.Stamp, op.Target, r.version)
	return nil
}

// write applies props to e key by key, keeping only writes newer than the
// last one seen for that key. It reports whether anything changed.
func (r *Replica) write(e *element, stamp Stamp, props Props) bool {
	changed := false
	for k, v := range props {
		if prev, ok := e.written[k]; ok && !prev.Less(stamp) {
			continue
		}
		e.written[k] = stamp
		if v == nil {
			delete(e.props, k)
		} else {
			e.props[k] = v
		}
		changed = true
	}
	return changed
}

func (r *Replica) indexOf(id Stamp) int {
	if _, ok := r.byID[id]; !ok {
		return -1
	}
	for i, e := range r.elems {
		if e.id == id {
			return i
		}
	}
	return -1
}

// TakeOutbox hands over the local ops not yet sent to the hub.
func (r *Replica) TakeOutbox() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.outbox
	r.outbox = nil
	return ops
}

// Requeue puts ops that failed to send back in front of newer local ops.
func (r *Replica) Requeue(ops []Op) {
	if len(ops) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbox = append(append([]Op(nil), ops...), r.outbox...)
}

// Pending reports how many local ops are waiting to be sent.
func (r *Replica) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.outbox)
}
