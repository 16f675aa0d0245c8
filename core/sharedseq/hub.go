package sharedseq

import (
	"context"
	"sync"

	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

// Transport carries ops between a replica and the ordering service.
type Transport interface {
	Submit(ctx context.Context, ops []Op) error
	Fetch(ctx context.Context, since uint64) ([]Sequenced, error)
}

// Hub is the ordering service for one container: it stamps submitted ops
// with consecutive sequence numbers and serves the log to every client.
// Clients joining late replay the log from the start.
type Hub struct {
	mu      sync.Mutex
	log     []Sequenced
	changed chan struct{}
	logger  *game_log.Logger
}

func NewHub(logger *game_log.Logger) *Hub {
	return &Hub{changed: make(chan struct{}), logger: logger.Tag("HUB")}
}

// Submit appends ops to the log in the order given.
func (h *Hub) Submit(ctx context.Context, ops []Op) error {
	for _, op := range ops {
		if err := op.validate(); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, op := range ops {
		seq := uint64(len(h.log)) + 1
		h.log = append(h.log, Sequenced{Seq: seq, Op: op})
		h.logger.Debugf("seq %d: %s %s", seq, op.Kind, op.Stamp)
	}
	if len(ops) > 0 {
		close(h.changed)
		h.changed = make(chan struct{})
	}
	return nil
}

// Fetch returns every op sequenced after since.
func (h *Hub) Fetch(ctx context.Context, since uint64) ([]Sequenced, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fetchLocked(since), nil
}

func (h *Hub) fetchLocked(since uint64) []Sequenced {
	if since >= uint64(len(h.log)) {
		return nil
	}
	return append([]Sequenced(nil), h.log[since:]...)
}

// Wait blocks until ops newer than since exist or ctx is done, then
// returns them. A done ctx with nothing new yields an empty slice and the
// ctx error.
func (h *Hub) Wait(ctx context.Context, since uint64) ([]Sequenced, error) {
	for {
		h.mu.Lock()
		ops := h.fetchLocked(since)
		changed := h.changed
		h.mu.Unlock()
		if len(ops) > 0 {
			return ops, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Head is the sequence number of the newest op.
func (h *Hub) Head() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint64(len(h.log))
}
