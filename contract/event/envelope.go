package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	perr "github.com/next-trace/scg-product-events/contract/errors"
)

// Kind is the operation that produced an envelope.
type Kind string

const (
	KindCreate Kind = "CREATE"
	KindDelete Kind = "DELETE"
)

// Envelope is the canonical unit published to a binding. Key is the aggregate
// identifier shared by every envelope derived from one aggregate operation.
// Payload is the JSON-encoded domain record for CREATE and null for DELETE.
//
// CreatedAt is stamped when the fanout publisher accepts the envelope;
// constructors leave it zero, and Equivalent ignores it.
type Envelope struct {
	Kind      Kind            `json:"kind"`
	Key       int             `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCreate builds a CREATE envelope carrying the given domain payload.
// Encoding happens here so that a payload that cannot be serialized is
// rejected before any envelope of the batch is dispatched.
func NewCreate(key int, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", errors.Join(perr.ErrSerializationFailed, err))
	}

	return Envelope{Kind: KindCreate, Key: key, Payload: raw}, nil
}

// NewDelete builds a DELETE envelope with a null payload.
func NewDelete(key int) Envelope {
	return Envelope{Kind: KindDelete, Key: key}
}

// Validate checks the wire invariants of an envelope, typically one decoded
// from an external source rather than built by a constructor: the kind must
// be known, the key positive, and the payload shape must match the kind
// (a domain record for CREATE, null for DELETE).
func (e Envelope) Validate() error {
	switch e.Kind {
	case KindCreate, KindDelete:
	default:
		return fmt.Errorf("kind %q: %w", string(e.Kind), perr.ErrInvalidEnvelope)
	}

	if e.Key < 1 {
		return fmt.Errorf("key %d: %w", e.Key, perr.ErrInvalidEnvelope)
	}

	if e.Kind == KindDelete && !nullPayload(e.Payload) {
		return fmt.Errorf("delete with payload: %w", perr.ErrInvalidEnvelope)
	}

	if e.Kind == KindCreate && nullPayload(e.Payload) {
		return fmt.Errorf("create without payload: %w", perr.ErrInvalidEnvelope)
	}

	return nil
}

func nullPayload(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
