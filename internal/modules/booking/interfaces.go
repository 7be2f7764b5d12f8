package booking

import (
	"context"

	"voiceagent/internal/domain"
)

// CalendarSync mirrors bookings onto an external calendar. Strictly
// best-effort: it runs after the booking transaction commits and its failures
// never roll back a booking.
type CalendarSync interface {
	CreateEvent(ctx context.Context, business *domain.Business, b *domain.Booking, c *domain.Customer) (eventID string, err error)
	UpdateEvent(ctx context.Context, business *domain.Business, b *domain.Booking, c *domain.Customer) error
	DeleteEvent(ctx context.Context, business *domain.Business, externalEventID string) error
}
