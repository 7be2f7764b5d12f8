package domain

import (
	"encoding/json"
	"time"
)

// Call is the durable record of one external call. Exactly one row exists per
// external call id no matter how many lifecycle events are delivered; the raw
// payloads accumulate in Events in delivery order.
type Call struct {
	ID             int64             `json:"id"`
	ExternalCallID string            `json:"external_call_id"`
	BusinessID     *int64            `json:"business_id,omitempty"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	EndedAt        *time.Time        `json:"ended_at,omitempty"`
	Outcome        string            `json:"outcome,omitempty"`
	Events         []json.RawMessage `json:"events"`
	CreatedAt      time.Time         `json:"created_at"`
}
