package callrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"voiceagent/internal/domain"
	"voiceagent/internal/modules/tenant"
	"voiceagent/internal/repository"
)

// ErrNoMapping means inbound routing found no business and no demo fallback.
var ErrNoMapping = errors.New("no business mapping found for inbound request")

type Service struct {
	store      *repository.CallStore
	resolver   *tenant.Resolver
	businesses tenant.BusinessDirectory
}

func NewService(store *repository.CallStore, resolver *tenant.Resolver, businesses tenant.BusinessDirectory) *Service {
	return &Service{store: store, resolver: resolver, businesses: businesses}
}

// RecordEvent reconciles one delivered lifecycle event into the Call record.
// Safe under at-least-once delivery: the first event for an external call id
// creates the row, every delivery appends to the log in order, and a
// duplicate delivery appends a duplicate entry without a second row.
func (s *Service) RecordEvent(ctx context.Context, raw json.RawMessage) error {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}
	callID := payload.Call.CallID
	if callID == "" {
		log.Printf("webhook_event_skipped reason=missing_call_id")
		return nil
	}

	businessID := s.resolveBusinessID(ctx, payload.Call)

	err := s.upsert(ctx, callID, businessID, raw, &payload)
	if repository.IsUniqueViolation(err) {
		// Lost the create race to a concurrent delivery; the row exists now,
		// so the append path must succeed.
		err = s.upsert(ctx, callID, businessID, raw, &payload)
	}
	return err
}

func (s *Service) upsert(ctx context.Context, callID string, businessID *int64, raw json.RawMessage, payload *WebhookPayload) error {
	return s.store.Transaction(ctx, func(tx *repository.CallStore) error {
		call, err := tx.ByExternalID(ctx, callID)
		if err != nil {
			return err
		}

		if call == nil {
			call = &domain.Call{
				ExternalCallID: callID,
				BusinessID:     businessID,
				Events:         []json.RawMessage{raw},
			}
			if started := parseTime(payload.Call.StartedAt); started != nil {
				call.StartedAt = started
			}
			applyTerminalFields(call, payload)
			return tx.Create(ctx, call)
		}

		call.Events = append(call.Events, raw)
		if call.BusinessID == nil {
			call.BusinessID = businessID
		}
		applyTerminalFields(call, payload)
		return tx.Update(ctx, call)
	})
}

// applyTerminalFields persists end-of-call state, last write wins per field.
func applyTerminalFields(call *domain.Call, payload *WebhookPayload) {
	if !payload.isTerminal() {
		return
	}
	if ended := parseTime(payload.Call.EndedAt); ended != nil {
		call.EndedAt = ended
	}
	if payload.Call.Outcome != "" {
		call.Outcome = payload.Call.Outcome
	}
}

// resolveBusinessID is best effort: webhook delivery must survive an
// unmatched tenant context.
func (s *Service) resolveBusinessID(ctx context.Context, call tenant.CallContext) *int64 {
	business, err := s.resolver.Resolve(ctx, call)
	if err != nil {
		log.Printf("webhook_tenant_unmatched call_id=%s", call.CallID)
		return nil
	}
	return &business.ID
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// MapInbound resolves which tenant should own an incoming call before it is
// connected: destination number first, then agent id, then the demo business.
func (s *Service) MapInbound(ctx context.Context, payload *InboundPayload) (*InboundMetadata, error) {
	businesses, err := s.businesses.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		business *domain.Business
		reason   string
	)
	if toNumber := payload.toNumber(); toNumber != "" {
		if b := tenant.FindByPhone(businesses, toNumber); b != nil {
			business, reason = b, "to_number"
		}
	}
	if business == nil {
		if agentID := payload.agentID(); agentID != "" {
			if b := tenant.FindByAgentID(businesses, agentID); b != nil {
				business, reason = b, "agent_id"
			}
		}
	}
	if business == nil {
		if b := tenant.FindDemo(businesses); b != nil {
			business, reason = b, "fallback_demo"
		}
	}
	if business == nil {
		return nil, ErrNoMapping
	}

	ref := business.ExternalID
	if ref == "" {
		ref = strconv.FormatInt(business.ID, 10)
	}
	return &InboundMetadata{
		InternalCustomerID: ref,
		BusinessID:         ref,
		RoutingReason:      reason,
		DebugUnmapped:      reason == "fallback_demo",
	}, nil
}
