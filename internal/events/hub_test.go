package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish(New("req-1", TypeLeadCreated, map[string]any{"id": 7}))

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, TypeLeadCreated, e.Type)
		assert.Equal(t, 1, e.Version)
		assert.Equal(t, "req-1", e.RequestID)
		assert.JSONEq(t, `{"id":7}`, string(e.Data))
	}

	h.Unsubscribe(a)
	h.Unsubscribe(b)
	assert.Equal(t, 0, h.Subscribers())
}

func TestHubDropsWhenSlow(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Fill the buffer without draining; extra publishes must not block.
	for i := 0; i < cap(ch)+5; i++ {
		h.Publish(New("", TypePing, nil))
	}
	assert.Equal(t, uint64(5), h.Dropped())
}
