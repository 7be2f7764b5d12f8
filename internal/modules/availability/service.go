package availability

import (
	"context"
	"time"

	"voiceagent/internal/domain"
)

type Service struct {
	bookings BookingReader
}

func NewService(bookings BookingReader) *Service {
	return &Service{bookings: bookings}
}

const maxSuggestions = 3

// Check runs the capacity-constrained search for one business. Read-only;
// repeating the same query with no intervening bookings returns the same
// ranked list.
func (s *Service) Check(ctx context.Context, business *domain.Business, args CheckArgs) (*Result, error) {
	policy := business.BookingPolicy()
	flex := time.Duration(args.FlexibilityMinutes) * time.Minute
	duration := time.Duration(policy.DurationMinutes) * time.Minute

	// A booking ending inside the window or starting before the window's last
	// candidate finishes can still consume capacity, hence the widened load.
	searchStart := args.DesiredStart.Add(-flex)
	searchEnd := args.DesiredStart.Add(flex).Add(duration)

	existing, err := s.bookings.ListOverlapping(ctx, business.ID, searchStart, searchEnd)
	if err != nil {
		return nil, err
	}

	slots := FindBestStartTimes(
		args.DesiredStart,
		args.FlexibilityMinutes,
		args.PartySize,
		policy.DurationMinutes,
		policy.MaxGuestsPer15,
		existing,
		maxSuggestions,
	)

	result := &Result{
		Result:              ResultNoAvailability,
		AvailableStartTimes: []string{},
	}
	if len(slots) > 0 {
		result.Result = ResultAvailable
		for _, slot := range slots {
			result.AvailableStartTimes = append(result.AvailableStartTimes, slot.UTC().Format(time.RFC3339))
		}
	}
	return result, nil
}
