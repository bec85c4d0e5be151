package events

import (
	"encoding/json"
	"time"
)

// Event types published on the hub.
const (
	TypePing          = "ping"
	TypeLeadCreated   = "lead_created"
	TypeLeadDeleted   = "lead_deleted"
	TypeIntakeStarted = "intake_started"
	TypeIntakeDone    = "intake_done"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds a v1 event envelope with the payload marshaled in place.
func New(reqID, typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
}

func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
