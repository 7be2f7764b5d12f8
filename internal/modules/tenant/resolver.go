package tenant

import (
	"context"
	"strconv"

	"voiceagent/internal/domain"
	"voiceagent/internal/pkg/phone"
)

// Resolver maps an inbound call context to exactly one business. Resolution
// order, first match wins: metadata.internal_customer_id, metadata.business_id,
// destination number, agent id. With demoFallback set (non-production only) an
// unresolved call lands on the demo business instead of failing.
type Resolver struct {
	businesses   BusinessDirectory
	demoFallback bool
}

func NewResolver(businesses BusinessDirectory, demoFallback bool) *Resolver {
	return &Resolver{businesses: businesses, demoFallback: demoFallback}
}

func (r *Resolver) Resolve(ctx context.Context, call CallContext) (*domain.Business, error) {
	internalCustomerID := call.MetadataString("internal_customer_id")
	metadataBusinessID := call.MetadataString("business_id")
	toNumber := call.ToNumber
	agentID := call.AgentID

	businesses, err := r.businesses.List(ctx)
	if err != nil {
		return nil, err
	}

	if internalCustomerID != "" {
		if b := findByRef(businesses, internalCustomerID); b != nil {
			return b, nil
		}
	}
	if metadataBusinessID != "" {
		if b := findByRef(businesses, metadataBusinessID); b != nil {
			return b, nil
		}
	}
	if toNumber != "" {
		if b := FindByPhone(businesses, toNumber); b != nil {
			return b, nil
		}
	}
	if agentID != "" {
		if b := FindByAgentID(businesses, agentID); b != nil {
			return b, nil
		}
	}

	if r.demoFallback {
		if b := FindDemo(businesses); b != nil {
			return b, nil
		}
	}

	anySignal := internalCustomerID != "" || metadataBusinessID != "" || toNumber != "" || agentID != ""
	if anySignal {
		return nil, ErrResolutionFailed
	}
	return nil, ErrMissingContext
}

// findByRef matches the stable external id first, then the numeric row id.
func findByRef(businesses []domain.Business, ref string) *domain.Business {
	for i := range businesses {
		if businesses[i].ExternalID != "" && businesses[i].ExternalID == ref {
			return &businesses[i]
		}
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for i := range businesses {
			if businesses[i].ID == id {
				return &businesses[i]
			}
		}
	}
	return nil
}

// FindByPhone matches the business line or its transfer line.
func FindByPhone(businesses []domain.Business, toNumber string) *domain.Business {
	for i := range businesses {
		if phone.Match(businesses[i].Phone, toNumber) || phone.Match(businesses[i].TransferPhone, toNumber) {
			return &businesses[i]
		}
	}
	return nil
}

// FindByAgentID matches the voice agent id pinned in the business policies.
func FindByAgentID(businesses []domain.Business, agentID string) *domain.Business {
	for i := range businesses {
		if p := businesses[i].BookingPolicy(); p.AgentID != "" && p.AgentID == agentID {
			return &businesses[i]
		}
	}
	return nil
}

// FindDemo picks the demo tenant: external id "demo", then the canonical demo
// name, then the first business on the roster.
func FindDemo(businesses []domain.Business) *domain.Business {
	for i := range businesses {
		if businesses[i].ExternalID == "demo" {
			return &businesses[i]
		}
	}
	for i := range businesses {
		if businesses[i].Name == "Demo Restaurant" {
			return &businesses[i]
		}
	}
	if len(businesses) > 0 {
		return &businesses[0]
	}
	return nil
}
