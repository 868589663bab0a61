package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every published event with an id, kind and timestamp so
// consumers can deduplicate and route without inspecting the payload.
type Envelope struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func NewEnvelope(kind string, payload any) *Envelope {
	return &Envelope{
		EventID:   uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON decodes a received envelope; the payload stays raw for
// the consumer to decode by kind.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var raw struct {
		EventID   string          `json:"event_id"`
		Kind      string          `json:"kind"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:   raw.EventID,
		Kind:      raw.Kind,
		Timestamp: raw.Timestamp,
		Payload:   raw.Payload,
	}, nil
}
