package availability

import (
	"encoding/json"
	"fmt"
	"time"
)

const DefaultFlexibilityMinutes = 60

type CheckArgs struct {
	DesiredStart       time.Time
	PartySize          int
	FlexibilityMinutes int
}

type rawCheckArgs struct {
	DesiredStart       string `json:"desired_start"`
	PartySize          *int   `json:"party_size"`
	FlexibilityMinutes *int   `json:"flexibility_minutes"`
}

// ParseCheckArgs validates the tool arguments before any store access.
func ParseCheckArgs(raw json.RawMessage) (CheckArgs, error) {
	var in rawCheckArgs
	if err := json.Unmarshal(raw, &in); err != nil {
		return CheckArgs{}, fmt.Errorf("%w: malformed arguments", ErrValidation)
	}

	desired, err := ParseTimestamp(in.DesiredStart)
	if err != nil {
		return CheckArgs{}, fmt.Errorf("%w: desired_start must be a valid timestamp", ErrValidation)
	}
	if in.PartySize == nil || *in.PartySize <= 0 {
		return CheckArgs{}, fmt.Errorf("%w: party_size must be a positive integer", ErrValidation)
	}

	flexibility := DefaultFlexibilityMinutes
	if in.FlexibilityMinutes != nil {
		if *in.FlexibilityMinutes < 0 {
			return CheckArgs{}, fmt.Errorf("%w: flexibility_minutes must be a non-negative integer", ErrValidation)
		}
		flexibility = *in.FlexibilityMinutes
	}

	return CheckArgs{
		DesiredStart:       desired,
		PartySize:          *in.PartySize,
		FlexibilityMinutes: flexibility,
	}, nil
}

// ParseTimestamp accepts RFC 3339, with a bare date-time treated as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

const (
	ResultAvailable      = "AVAILABLE"
	ResultNoAvailability = "NO_AVAILABILITY"
)

// Result is a success outcome either way: an empty candidate list is
// NO_AVAILABILITY, not an error.
type Result struct {
	Result              string   `json:"result"`
	AvailableStartTimes []string `json:"available_start_times"`
}
