package tenant

import (
	"strconv"
	"strings"
)

// CallContext is the call object every tool invocation and webhook carries:
// {name, args, call:{call_id, metadata, to_number?, agent_id?, ...}}. It
// arrives already deserialized and signature-verified.
type CallContext struct {
	CallID    string         `json:"call_id"`
	Metadata  map[string]any `json:"metadata"`
	ToNumber  string         `json:"to_number"`
	AgentID   string         `json:"agent_id"`
	StartedAt string         `json:"started_at"`
	EndedAt   string         `json:"ended_at"`
	Outcome   string         `json:"outcome"`
}

// MetadataString returns a trimmed non-empty string metadata value, or "".
// Numeric values are rendered as their integer form: metadata decoded from
// JSON carries ids as float64.
func (c CallContext) MetadataString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return pickString(c.Metadata[key])
}

func pickString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatInt(int64(s), 10)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}
