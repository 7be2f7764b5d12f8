package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyKey is a write-once ledger entry: the key fingerprints a mutating
// request and Response is the exact payload the first execution returned.
type IdempotencyKey struct {
	ID        int64           `json:"id"`
	Key       string          `json:"key"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}
