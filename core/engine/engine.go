package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/score"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
)

// Event reports that the shared sequence changed, locally or remotely.
type Event struct {
	Version uint64
}

const DefaultInterval = 100 * time.Millisecond

// Engine owns one editing session: a replica, the client keeping it in
// step with the relay and the score view over it. The sync loop runs on
// its own goroutine.
type Engine struct {
	Replica *sharedseq.Replica
	Client  *sharedseq.Client
	Score   *score.Score
	Events  chan Event

	logger   *game_log.Logger
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	version  uint64
}

// New creates a session with a fresh client id and starts its sync loop.
func New(t sharedseq.Transport, interval time.Duration, logger *game_log.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	replica := sharedseq.NewReplica(sharedseq.ClientID(uuid.NewString()), logger)
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		Replica:  replica,
		Client:   sharedseq.NewClient(replica, t, logger),
		Score:    score.New(replica, logger),
		Events:   make(chan Event, 16),
		logger:   logger.Tag("ENGINE"),
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.done)
	e.sync()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.sync()
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Engine) sync() {
	if err := e.Client.Sync(e.ctx); err != nil && e.ctx.Err() == nil {
		e.logger.Warnf("sync: %v", err)
	}
	if v := e.Replica.Version(); v != e.version {
		e.version = v
		select {
		case e.Events <- Event{Version: v}:
		default:
		}
	}
}

// WaitConnected blocks until the first sync succeeded or ctx is done.
func (e *Engine) WaitConnected(ctx context.Context) error {
	select {
	case <-e.Client.Connected():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush pushes pending local ops right away instead of waiting for the
// next tick.
func (e *Engine) Flush(ctx context.Context) error { return e.Client.Sync(ctx) }

// Close stops the sync loop and waits for it to exit.
func (e *Engine) Close() {
	e.cancel()
	<-e.done
}
