package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	type payload struct {
		DebtID int64  `json:"debt_id"`
		Person string `json:"person_name"`
	}

	env := NewEnvelope("debt.created", payload{DebtID: 7, Person: "Alice"})
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "debt.created", env.Kind)
	assert.WithinDuration(t, time.Now(), env.Timestamp, time.Second)

	data, err := env.ToJSON()
	require.NoError(t, err)

	got, err := EnvelopeFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, got.EventID)
	assert.Equal(t, env.Kind, got.Kind)

	// The payload stays raw so consumers decode by kind.
	raw, ok := got.Payload.(json.RawMessage)
	require.True(t, ok)
	var p payload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, int64(7), p.DebtID)
	assert.Equal(t, "Alice", p.Person)
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	a := NewEnvelope("x", nil)
	b := NewEnvelope("x", nil)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestEnvelopeFromJSONRejectsGarbage(t *testing.T) {
	_, err := EnvelopeFromJSON([]byte("not json"))
	assert.Error(t, err)
}
