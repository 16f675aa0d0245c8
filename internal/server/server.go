package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"github.com/rs/cors"
)

var ErrUnknownContainer = errors.New("server: unknown container")

// MaxWait caps how long a fetch may block waiting for new ops.
const MaxWait = 30 * time.Second

type CreateResponse struct {
	ID uuid.UUID `json:"id"`
}

type OpsResponse struct {
	Ops  []sharedseq.Sequenced `json:"ops"`
	Head uint64                `json:"head"`
}

type SubmitRequest struct {
	Ops []sharedseq.Op `json:"ops"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

// Server relays ops between the clients of each container. Every
// container is an independent Hub, kept in memory for the server's life.
type Server struct {
	mu     sync.RWMutex
	hubs   map[uuid.UUID]*sharedseq.Hub
	logger *game_log.Logger
}

func New(logger *game_log.Logger) *Server {
	return &Server{hubs: map[uuid.UUID]*sharedseq.Hub{}, logger: logger.Tag("SERVER")}
}

// CreateContainer registers a fresh, empty container.
func (s *Server) CreateContainer() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.hubs[id] = sharedseq.NewHub(s.logger)
	s.mu.Unlock()
	s.logger.Infof("container %s created", id)
	return id
}

// Hub returns the hub of container id.
func (s *Server) Hub(id uuid.UUID) (*sharedseq.Hub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hubs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, id)
	}
	return h, nil
}

// Handler routes the relay API and lets browser peers call it from any
// origin.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/containers", s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/containers/{id}/ops", s.handleFetch).Methods(http.MethodGet)
	router.HandleFunc("/containers/{id}/ops", s.handleSubmit).Methods(http.MethodPost)
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Infof("listening on %s", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, CreateResponse{ID: s.CreateContainer()})
}

func (s *Server) hubFor(w http.ResponseWriter, r *http.Request) (*sharedseq.Hub, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("container id: %w", err))
		return nil, false
	}
	h, err := s.Hub(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return h, true
}

// handleFetch serves ops after ?since=N. With ?wait=<duration> it holds
// the request until something new arrives or the wait runs out.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	h, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var since uint64
	if raw := q.Get("since"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("since: %w", err))
			return
		}
		since = v
	}

	var ops []sharedseq.Sequenced
	if raw := q.Get("wait"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("wait: %w", err))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), min(wait, MaxWait))
		defer cancel()
		ops, err = h.Wait(ctx, since)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return // client went away
		}
	} else {
		var err error
		if ops, err = h.Fetch(r.Context(), since); err != nil {
			return
		}
	}
	if ops == nil {
		ops = []sharedseq.Sequenced{}
	}
	writeJSON(w, http.StatusOK, OpsResponse{Ops: ops, Head: h.Head()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode ops: %w", err))
		return
	}
	if err := h.Submit(r.Context(), req.Ops); err != nil {
		if errors.Is(err, sharedseq.ErrBadOp) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Errorf("submit: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Debugf("%s: %d ops", mux.Vars(r)["id"], len(req.Ops))
	writeJSON(w, http.StatusOK, OpsResponse{Ops: []sharedseq.Sequenced{}, Head: h.Head()})
}
