package availability

import (
	"context"
	"time"

	"voiceagent/internal/domain"
)

// BookingReader loads the confirmed bookings whose intervals intersect the
// search window. The search never writes.
type BookingReader interface {
	ListOverlapping(ctx context.Context, businessID int64, from, to time.Time) ([]domain.Booking, error)
}
