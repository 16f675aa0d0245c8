package sharedseq

import (
	"errors"
	"fmt"
	"maps"
)

var (
	ErrOutOfRange     = errors.New("sharedseq: position out of range")
	ErrUnknownElement = errors.New("sharedseq: unknown element")
	ErrBadOp          = errors.New("sharedseq: malformed op")
)

// ClientID identifies one replica. Clients pick a fresh UUID per session.
type ClientID string

// Stamp is a Lamport timestamp made unique by the issuing client. Stamps
// identify elements (the stamp of the insert that created them) and order
// property writes.
type Stamp struct {
	Lamport uint64   `json:"l"`
	Client  ClientID `json:"c"`
}

func (s Stamp) IsZero() bool { return s.Lamport == 0 && s.Client == "" }

// Less orders stamps by Lamport time, breaking ties by client id.
func (s Stamp) Less(o Stamp) bool {
	if s.Lamport != o.Lamport {
		return s.Lamport < o.Lamport
	}
	return s.Client < o.Client
}

func (s Stamp) String() string { return fmt.Sprintf("%d@%s", s.Lamport, s.Client) }

// Props is the property bag annotated onto an element. A nil value in an
// annotation removes the key.
type Props map[string]any

func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

type OpKind string

const (
	OpInsert   OpKind = "insert"
	OpRemove   OpKind = "remove"
	OpAnnotate OpKind = "annotate"
)

// Op is one replicated mutation. For inserts Stamp is the new element's id
// and Target the element it follows (zero for the head of the sequence).
// For removes and annotations Target is the element acted on.
type Op struct {
	Kind   OpKind `json:"kind"`
	Stamp  Stamp  `json:"stamp"`
	Target Stamp  `json:"target"`
	Props  Props  `json:"props,omitempty"`
}

func (o Op) validate() error {
	if o.Stamp.Lamport == 0 || o.Stamp.Client == "" {
		return fmt.Errorf("%w: missing stamp", ErrBadOp)
	}
	switch o.Kind {
	case OpInsert:
		return nil
	case OpRemove, OpAnnotate:
		if o.Target.IsZero() {
			return fmt.Errorf("%w: %s without target", ErrBadOp, o.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrBadOp, o.Kind)
	}
}

// Sequenced is an op together with the position the hub assigned to it in
// the total order.
type Sequenced struct {
	Seq uint64 `json:"seq"`
	Op  Op     `json:"op"`
}
