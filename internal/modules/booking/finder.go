package booking

import (
	"context"
	"sort"
	"strings"
	"time"

	"voiceagent/internal/domain"
	"voiceagent/internal/pkg/phone"
)

// The date/time narrowing tolerance: spoken times are imprecise, so a stated
// time matches bookings within two hours.
const findTimeTolerance = 2 * time.Hour

// Find returns the confirmed bookings matching the caller's phone (and
// optional name/date/time) within the lookahead window, soonest first. The
// handler decides between BOOKING_NOT_FOUND, a unique hit and
// AMBIGUOUS_BOOKING; this engine never guesses among multiple matches.
func (s *Service) Find(ctx context.Context, business *domain.Business, args FindArgs, now time.Time) ([]Match, error) {
	customers, err := s.store.ListCustomers(ctx, business.ID)
	if err != nil {
		return nil, err
	}

	matching := map[int64]domain.Customer{}
	for _, c := range customers {
		if phone.Match(c.Phone, args.CustomerPhone) && nameMatches(c.Name, args.CustomerName) {
			matching[c.ID] = c
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}

	rangeEnd := now.Add(time.Duration(args.LookaheadDays) * 24 * time.Hour)
	bookings, err := s.store.ListConfirmedBetween(ctx, business.ID, now, rangeEnd)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Booking
	for _, b := range bookings {
		if _, ok := matching[b.CustomerID]; !ok {
			continue
		}
		if !matchesDateTime(b.StartTime, args) {
			continue
		}
		candidates = append(candidates, b)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].StartTime.Before(candidates[j].StartTime)
	})

	matches := make([]Match, 0, len(candidates))
	for _, b := range candidates {
		c := matching[b.CustomerID]
		matches = append(matches, Match{
			BookingID:     b.ID,
			StartTime:     b.StartTime.UTC().Format(time.RFC3339),
			PartySize:     b.PartySize,
			Status:        string(b.Status),
			CustomerName:  c.Name,
			CustomerPhone: c.Phone,
		})
	}
	return matches, nil
}

func nameMatches(existingName, expectedName string) bool {
	if expectedName == "" {
		return true
	}
	return strings.Contains(
		strings.ToLower(strings.TrimSpace(existingName)),
		strings.ToLower(strings.TrimSpace(expectedName)),
	)
}

func matchesDateTime(start time.Time, args FindArgs) bool {
	start = start.UTC()

	switch {
	case args.Date != "" && args.Time != "":
		target, err := time.ParseInLocation("2006-01-02 15:04", args.Date+" "+args.Time, time.UTC)
		if err != nil {
			return false
		}
		diff := start.Sub(target)
		return diff >= -findTimeTolerance && diff <= findTimeTolerance

	case args.Date != "":
		day, err := time.ParseInLocation("2006-01-02", args.Date, time.UTC)
		if err != nil {
			return false
		}
		low := day.Add(-findTimeTolerance)
		high := day.Add(24*time.Hour + findTimeTolerance)
		return !start.Before(low) && !start.After(high)

	case args.Time != "":
		target, err := time.Parse("15:04", args.Time)
		if err != nil {
			return false
		}
		bookingMinutes := start.Hour()*60 + start.Minute()
		targetMinutes := target.Hour()*60 + target.Minute()
		diff := bookingMinutes - targetMinutes
		if diff < 0 {
			diff = -diff
		}
		return diff <= int(findTimeTolerance.Minutes())

	default:
		return true
	}
}
