package callrecord

import (
	"voiceagent/internal/modules/tenant"
)

// Lifecycle event types that carry terminal call state.
const (
	EventCallEnded    = "call_ended"
	EventCallAnalyzed = "call_analyzed"
)

// WebhookPayload is the slice of a lifecycle event the reconciler acts on.
// The raw payload is appended to the event log untouched, so unknown fields
// survive verbatim.
type WebhookPayload struct {
	Event string             `json:"event"`
	Call  tenant.CallContext `json:"call"`
}

func (p *WebhookPayload) isTerminal() bool {
	return p.Event == EventCallEnded || p.Event == EventCallAnalyzed
}

// InboundPayload is the pre-call routing request: the platform asks which
// tenant should own a call before connecting it. Field names vary by
// payload generation, top level or nested under call.
type InboundPayload struct {
	ToNumber     string              `json:"to_number"`
	To           string              `json:"to"`
	CalledNumber string              `json:"called_number"`
	AgentID      string              `json:"agent_id"`
	Call         *InboundCallDetails `json:"call"`
}

type InboundCallDetails struct {
	ToNumber     string `json:"to_number"`
	To           string `json:"to"`
	CalledNumber string `json:"called_number"`
	AgentID      string `json:"agent_id"`
}

func (p *InboundPayload) toNumber() string {
	for _, v := range []string{p.ToNumber, p.To, p.CalledNumber} {
		if v != "" {
			return v
		}
	}
	if p.Call != nil {
		for _, v := range []string{p.Call.ToNumber, p.Call.To, p.Call.CalledNumber} {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

func (p *InboundPayload) agentID() string {
	if p.AgentID != "" {
		return p.AgentID
	}
	if p.Call != nil {
		return p.Call.AgentID
	}
	return ""
}

// InboundMetadata is stamped onto the call by the platform and later read
// back by the tenant resolver on every tool invocation.
type InboundMetadata struct {
	InternalCustomerID string `json:"internal_customer_id"`
	BusinessID         string `json:"business_id"`
	RoutingReason      string `json:"routing_reason"`
	DebugUnmapped      bool   `json:"debug_unmapped_tenant,omitempty"`
}
