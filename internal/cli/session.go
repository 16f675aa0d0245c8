package cli

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/ingyamilmolinar/staffline/core/engine"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"github.com/ingyamilmolinar/staffline/internal/server"
)

const connectTimeout = 10 * time.Second

// openSession joins the container named by joinURL, or creates a new one on
// base when joinURL is empty. It returns once the replica has caught up
// with the relay, along with the join URL to share.
func openSession(ctx context.Context, base, joinURL string, interval time.Duration, logger *game_log.Logger) (*engine.Engine, string, error) {
	hc := &http.Client{Timeout: connectTimeout}
	log := logger.Tag("CLI")

	var t *server.Transport
	if joinURL != "" {
		b, id, err := server.ParseJoinURL(joinURL)
		if err != nil {
			return nil, "", err
		}
		base = b
		t = server.NewTransport(base, id, hc)
	} else {
		id, err := server.CreateContainer(ctx, base, hc)
		if err != nil {
			return nil, "", fmt.Errorf("create container on %s: %w", base, err)
		}
		log.Infof("created container %s", id)
		t = server.NewTransport(base, id, hc)
	}

	e := engine.New(t, interval, logger)
	waitCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := e.WaitConnected(waitCtx); err != nil {
		e.Close()
		return nil, "", fmt.Errorf("join %s: %w", t.Container(), err)
	}
	url := server.JoinURL(base, t.Container())
	log.Infof("joined %s with %d entries", url, e.Score.Len())
	return e, url, nil
}

// seedIfEmpty fills an empty container with generated bars and pushes them
// right away so later joiners find them.
func seedIfEmpty(ctx context.Context, e *engine.Engine, bars int, seed int64) error {
	n, err := e.Score.Seed(rand.New(rand.NewSource(seed)), bars)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n == 0 {
		return nil
	}
	return e.Flush(ctx)
}
