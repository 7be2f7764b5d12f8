package admin

import (
	"encoding/json"
	"fmt"
	"time"

	"voiceagent/internal/domain"
)

type CreateBusinessRequest struct {
	ExternalID       string          `json:"external_id"`
	Name             string          `json:"name"`
	Timezone         string          `json:"timezone"`
	Phone            string          `json:"phone"`
	TransferPhone    string          `json:"transfer_phone"`
	Hours            json.RawMessage `json:"hours"`
	Policies         json.RawMessage `json:"policies"`
	CalendarProvider string          `json:"calendar_provider"`
	CalendarID       string          `json:"calendar_id"`
	CalendarSettings json.RawMessage `json:"calendar_settings"`
}

func (r *CreateBusinessRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.Timezone == "" {
		r.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, r.Timezone)
	}
	for field, blob := range map[string]json.RawMessage{
		"hours":             r.Hours,
		"policies":          r.Policies,
		"calendar_settings": r.CalendarSettings,
	} {
		if len(blob) > 0 && !json.Valid(blob) {
			return fmt.Errorf("%w: %s must be a JSON object", ErrValidation, field)
		}
	}
	return nil
}

// UpdateBusinessRequest is a partial update; nil fields are left untouched.
type UpdateBusinessRequest struct {
	ExternalID       *string         `json:"external_id"`
	Name             *string         `json:"name"`
	Timezone         *string         `json:"timezone"`
	Phone            *string         `json:"phone"`
	TransferPhone    *string         `json:"transfer_phone"`
	Hours            json.RawMessage `json:"hours"`
	Policies         json.RawMessage `json:"policies"`
	CalendarProvider *string         `json:"calendar_provider"`
	CalendarID       *string         `json:"calendar_id"`
	CalendarSettings json.RawMessage `json:"calendar_settings"`
}

func (r *UpdateBusinessRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrValidation, *r.Timezone)
		}
	}
	for field, blob := range map[string]json.RawMessage{
		"hours":             r.Hours,
		"policies":          r.Policies,
		"calendar_settings": r.CalendarSettings,
	} {
		if len(blob) > 0 && !json.Valid(blob) {
			return fmt.Errorf("%w: %s must be a JSON object", ErrValidation, field)
		}
	}
	return nil
}

type BusinessResponse struct {
	ID                 int64           `json:"id"`
	ExternalID         string          `json:"external_id,omitempty"`
	Name               string          `json:"name"`
	Timezone           string          `json:"timezone"`
	Phone              string          `json:"phone,omitempty"`
	TransferPhone      string          `json:"transfer_phone,omitempty"`
	Hours              json.RawMessage `json:"hours,omitempty"`
	Policies           json.RawMessage `json:"policies,omitempty"`
	CalendarProvider   string          `json:"calendar_provider,omitempty"`
	CalendarID         string          `json:"calendar_id,omitempty"`
	CalendarAuthStatus string          `json:"calendar_oauth_status"`
	CreatedAt          string          `json:"created_at"`
}

func toBusinessResponse(b *domain.Business) BusinessResponse {
	return BusinessResponse{
		ID:                 b.ID,
		ExternalID:         b.ExternalID,
		Name:               b.Name,
		Timezone:           b.Timezone,
		Phone:              b.Phone,
		TransferPhone:      b.TransferPhone,
		Hours:              b.Hours,
		Policies:           b.Policies,
		CalendarProvider:   b.CalendarProvider,
		CalendarID:         b.CalendarID,
		CalendarAuthStatus: string(b.CalendarAuthStatus),
		CreatedAt:          b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
