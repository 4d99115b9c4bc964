package sync

import (
	"encoding/json"
	"fmt"

	"github.com/fencerfight/tourney/src/app/tournament"
	"github.com/fencerfight/tourney/src/domain/shared"
)

// Kind tags the closed union of sync messages. Anything else on the wire is
// rejected on receipt.
type Kind string

const (
	// KindFullSync replaces every carried collection of local state.
	KindFullSync Kind = "full-sync"
	// KindPoolSync replaces a single pool's slice of every collection.
	KindPoolSync Kind = "pool"
	// KindRequestSync asks the addressed party to send a full-sync back.
	KindRequestSync Kind = "request-sync"
)

// Envelope is the wire message. Exactly one payload field is meaningful per
// kind.
type Envelope struct {
	Kind      Kind                  `json:"kind"`
	Token     shared.ClientToken    `json:"token,omitempty"`
	State     *tournament.Snapshot  `json:"state,omitempty"`
	PoolIndex *int                  `json:"poolIndex,omitempty"`
	Pool      *tournament.PoolSlice `json:"pool,omitempty"`
}

// Validate checks the envelope against its declared kind.
func (e *Envelope) Validate() error {
	switch e.Kind {
	case KindFullSync:
		if e.State == nil {
			return fmt.Errorf("%w: full-sync without state", ErrMalformedMessage)
		}
	case KindPoolSync:
		if e.PoolIndex == nil || e.Pool == nil {
			return fmt.Errorf("%w: pool sync without index or slice", ErrMalformedMessage)
		}
		if *e.PoolIndex < 0 {
			return fmt.Errorf("%w: negative pool index", ErrMalformedMessage)
		}
	case KindRequestSync:
		// Token is optional: connection identity is tried first.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(e.Kind))
	}
	return nil
}

// Decode parses and validates a raw wire message.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Encode serializes an envelope for the wire.
func Encode(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}
