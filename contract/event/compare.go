package event

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Equivalent reports whether two envelopes carry the same kind, key, and
// structurally equal payloads. CreatedAt is stamped at publish time and can
// never be reproduced by a caller constructing an expected value ahead of
// time, so it is excluded entirely from the comparison.
//
// Payload equality is JSON-value equality: key order and whitespace do not
// matter, and an absent payload equals an explicit null.
func Equivalent(expected, actual Envelope) bool {
	if expected.Kind != actual.Kind || expected.Key != actual.Key {
		return false
	}

	return payloadEqual(expected.Payload, actual.Payload)
}

func payloadEqual(a, b json.RawMessage) bool {
	av, aok := decodePayload(a)
	bv, bok := decodePayload(b)

	if !aok || !bok {
		// undecodable payloads fall back to byte comparison
		return bytes.Equal(a, b)
	}

	return reflect.DeepEqual(av, bv)
}

func decodePayload(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}

	return v, true
}
