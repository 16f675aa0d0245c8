package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/ingyamilmolinar/staffline/core/sharedseq"
)

var ErrBadJoinURL = errors.New("server: bad join url")

// JoinURL is the address other editors use to join container id. The
// container travels in the fragment.
func JoinURL(base string, id uuid.UUID) string {
	return strings.TrimRight(base, "/") + "/#" + id.String()
}

// ParseJoinURL splits a join URL into the relay base and the container id.
func ParseJoinURL(raw string) (string, uuid.UUID, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %v", ErrBadJoinURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", uuid.Nil, fmt.Errorf("%w: %q has no scheme or host", ErrBadJoinURL, raw)
	}
	id, err := uuid.Parse(u.Fragment)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: fragment %q: %v", ErrBadJoinURL, u.Fragment, err)
	}
	u.Fragment, u.RawFragment = "", ""
	return strings.TrimRight(u.String(), "/"), id, nil
}

// Transport talks to one container on a relay over HTTP. It implements
// sharedseq.Transport.
type Transport struct {
	base      string
	container uuid.UUID
	hc        *http.Client
}

func NewTransport(base string, container uuid.UUID, hc *http.Client) *Transport {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Transport{base: strings.TrimRight(base, "/"), container: container, hc: hc}
}

func (t *Transport) Container() uuid.UUID { return t.container }

func (t *Transport) opsURL() string {
	return fmt.Sprintf("%s/containers/%s/ops", t.base, t.container)
}

func (t *Transport) Submit(ctx context.Context, ops []sharedseq.Op) error {
	body, err := json.Marshal(SubmitRequest{Ops: ops})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opsURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = t.do(req)
	return err
}

func (t *Transport) Fetch(ctx context.Context, since uint64) ([]sharedseq.Sequenced, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?since=%d", t.opsURL(), since), nil)
	if err != nil {
		return nil, err
	}
	res, err := t.do(req)
	if err != nil {
		return nil, err
	}
	return res.Ops, nil
}

func (t *Transport) do(req *http.Request) (OpsResponse, error) {
	var out OpsResponse
	resp, err := t.hc.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return out, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode ops: %w", err)
	}
	return out, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var e ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(raw, &e) != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(raw))
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrUnknownContainer, e.Error)
	}
	return fmt.Errorf("relay %s: %s", resp.Status, e.Error)
}

// CreateContainer asks the relay at base for a new container.
func CreateContainer(ctx context.Context, base string, hc *http.Client) (uuid.UUID, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/containers", nil)
	if err != nil {
		return uuid.Nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return uuid.Nil, err
	}
	var out CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, fmt.Errorf("decode container: %w", err)
	}
	return out.ID, nil
}
