package domain

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                    int64         `json:"id"`
	BusinessID            int64         `json:"business_id"`
	CustomerID            int64         `json:"customer_id"`
	StartTime             time.Time     `json:"start_time"`
	EndTime               time.Time     `json:"end_time"`
	PartySize             int           `json:"party_size"`
	Status                BookingStatus `json:"status"`
	Notes                 string        `json:"notes,omitempty"`
	Source                string        `json:"source"`
	ExternalEventID       string        `json:"external_event_id,omitempty"`
	ExternalEventProvider string        `json:"external_event_provider,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
}

// Overlaps reports whether the booking's interval intersects [from, to).
func (b *Booking) Overlaps(from, to time.Time) bool {
	return b.StartTime.Before(to) && b.EndTime.After(from)
}
