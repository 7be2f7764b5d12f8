package availability

import (
	"sort"
	"time"

	"voiceagent/internal/domain"
)

const SlotIncrementMinutes = 15

const slotIncrement = SlotIncrementMinutes * time.Minute

// FloorToGrid snaps an instant down to the 15-minute slot grid.
func FloorToGrid(t time.Time) time.Time {
	return t.UTC().Truncate(slotIncrement)
}

// FindBestStartTimes enumerates grid-aligned candidates within the
// flexibility window around the desired start, keeps those that fit under the
// capacity policy and returns up to maxResults ranked by absolute distance
// from the desired start, equidistant candidates earliest first.
func FindBestStartTimes(
	desired time.Time,
	flexibilityMinutes int,
	partySize int,
	durationMinutes int,
	maxGuestsPer15 int,
	existing []domain.Booking,
	maxResults int,
) []time.Time {
	flex := time.Duration(flexibilityMinutes) * time.Minute
	windowStart := desired.Add(-flex)
	windowEnd := desired.Add(flex)

	var candidates []time.Time
	for cursor := FloorToGrid(windowStart); !cursor.After(windowEnd); cursor = cursor.Add(slotIncrement) {
		candidates = append(candidates, cursor)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di := absDuration(candidates[i].Sub(desired))
		dj := absDuration(candidates[j].Sub(desired))
		if di != dj {
			return di < dj
		}
		return candidates[i].Before(candidates[j])
	})

	var available []time.Time
	for _, candidate := range candidates {
		if IsSlotAvailable(candidate, partySize, durationMinutes, maxGuestsPer15, existing) {
			available = append(available, candidate)
			if len(available) >= maxResults {
				break
			}
		}
	}
	return available
}

// IsSlotAvailable checks every 15-minute bucket the candidate's duration
// spans: the requested party plus all overlapping confirmed guests must stay
// at or under the cap in each bucket independently.
func IsSlotAvailable(
	candidate time.Time,
	partySize int,
	durationMinutes int,
	maxGuestsPer15 int,
	existing []domain.Booking,
) bool {
	end := candidate.Add(time.Duration(durationMinutes) * time.Minute)
	for bucket := candidate; bucket.Before(end); bucket = bucket.Add(slotIncrement) {
		bucketEnd := bucket.Add(slotIncrement)
		total := partySize
		for i := range existing {
			b := &existing[i]
			if b.Status == domain.BookingCancelled {
				continue
			}
			if b.Overlaps(bucket, bucketEnd) {
				total += b.PartySize
			}
		}
		if total > maxGuestsPer15 {
			return false
		}
	}
	return true
}

// WithoutBooking filters one booking out of the set, so a modify can recheck
// capacity without counting its own current allocation.
func WithoutBooking(bookings []domain.Booking, excludeID int64) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != excludeID {
			out = append(out, b)
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
