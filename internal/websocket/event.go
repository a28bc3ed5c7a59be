package websocket

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire framing for every event in both directions
// ARCHITECTURAL DISCOVERY: A named event plus raw payload keeps the framing
// untyped while each payload decodes into its exact struct — the dispatch
// switch over Event is the closed set of things a client can ask for
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEvent frames an outbound event
// FUNCTIONAL DISCOVERY: A nil payload omits the data field entirely, which is
// how payload-less events like messagesCleared appear on the wire
func encodeEvent(event string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", event, err)
	}
	return frame, nil
}

// decodeEnvelope parses an inbound frame without touching the payload
func decodeEnvelope(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, ErrMalformedFrame
	}
	if env.Event == "" {
		return nil, ErrMissingEventName
	}
	return &env, nil
}
