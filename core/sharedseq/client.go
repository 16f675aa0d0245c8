package sharedseq

import (
	"context"
	"errors"
	"sync"

	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

// Client keeps a Replica in step with a Transport: local ops go up, the
// hub's sequenced ops come down.
type Client struct {
	Replica *Replica

	transport Transport
	logger    *game_log.Logger

	mu        sync.Mutex
	cursor    uint64
	connected chan struct{}
	once      sync.Once
}

func NewClient(r *Replica, t Transport, logger *game_log.Logger) *Client {
	return &Client{
		Replica:   r,
		transport: t,
		logger:    logger.Tag("SEQ"),
		connected: make(chan struct{}),
	}
}

// Connected is closed once the first pull from the hub succeeded, i.e. the
// replica has caught up with everything sequenced before it joined.
func (c *Client) Connected() <-chan struct{} { return c.connected }

// IsConnected is the non-blocking form of Connected.
func (c *Client) IsConnected() bool {
	select {
	case <-c.connected:
		return true
	default:
		return false
	}
}

// Sync pushes pending local ops, then applies every op sequenced since the
// last pull. Echoes of this replica's own ops are skipped.
func (c *Client) Sync(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ops := c.Replica.TakeOutbox(); len(ops) > 0 {
		if err := c.transport.Submit(ctx, ops); err != nil {
			c.Replica.Requeue(ops)
			return err
		}
		c.logger.Debugf("pushed %d ops", len(ops))
	}

	seqd, err := c.transport.Fetch(ctx, c.cursor)
	if err != nil {
		return err
	}
	var errs []error
	for _, s := range seqd {
		c.cursor = s.Seq
		if s.Op.Stamp.Client == c.Replica.ClientID() {
			continue
		}
		if err := c.Replica.Apply(s.Op); err != nil {
			c.logger.Errorf("apply seq %d: %v", s.Seq, err)
			errs = append(errs, err)
		}
	}
	if len(seqd) > 0 {
		c.logger.Debugf("pulled %d ops, cursor=%d", len(seqd), c.cursor)
	}
	c.once.Do(func() {
		c.logger.Infof("connected, cursor=%d len=%d", c.cursor, c.Replica.Len())
		close(c.connected)
	})
	return errors.Join(errs...)
}
