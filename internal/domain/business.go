package domain

import (
	"encoding/json"
	"time"
)

type CalendarOAuthStatus string

const (
	CalendarNotConnected CalendarOAuthStatus = "not_connected"
	CalendarConnected    CalendarOAuthStatus = "connected"
)

const (
	DefaultBookingDurationMinutes = 90
	DefaultMaxGuestsPer15Min      = 40
)

type Business struct {
	ID                 int64               `json:"id"`
	ExternalID         string              `json:"external_id,omitempty"`
	Name               string              `json:"name"`
	Timezone           string              `json:"timezone"`
	Phone              string              `json:"phone,omitempty"`
	TransferPhone      string              `json:"transfer_phone,omitempty"`
	Hours              json.RawMessage     `json:"hours,omitempty"`
	Policies           json.RawMessage     `json:"policies,omitempty"`
	CalendarProvider   string              `json:"calendar_provider,omitempty"`
	CalendarAccountID  string              `json:"calendar_account_id,omitempty"`
	CalendarID         string              `json:"calendar_id,omitempty"`
	CalendarAuthStatus CalendarOAuthStatus `json:"calendar_oauth_status"`
	CalendarSettings   json.RawMessage     `json:"calendar_settings,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// BookingPolicy is the slice of the policies blob the booking engine cares
// about. Unknown or malformed fields fall back to defaults.
type BookingPolicy struct {
	DurationMinutes int
	MaxGuestsPer15  int
	AgentID         string
}

func (b *Business) BookingPolicy() BookingPolicy {
	p := BookingPolicy{
		DurationMinutes: DefaultBookingDurationMinutes,
		MaxGuestsPer15:  DefaultMaxGuestsPer15Min,
	}
	if len(b.Policies) == 0 {
		return p
	}

	var raw struct {
		DurationMinutes *int   `json:"default_booking_duration_minutes"`
		MaxGuestsPer15  *int   `json:"max_total_guests_per_15min"`
		AgentID         string `json:"agent_id"`
	}
	if err := json.Unmarshal(b.Policies, &raw); err != nil {
		return p
	}
	if raw.DurationMinutes != nil && *raw.DurationMinutes > 0 {
		p.DurationMinutes = *raw.DurationMinutes
	}
	if raw.MaxGuestsPer15 != nil && *raw.MaxGuestsPer15 > 0 {
		p.MaxGuestsPer15 = *raw.MaxGuestsPer15
	}
	p.AgentID = raw.AgentID
	return p
}

func (b *Business) CalendarSyncEnabled() bool {
	return b.CalendarProvider == "google" && b.CalendarAuthStatus == CalendarConnected
}
