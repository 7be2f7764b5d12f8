package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"voiceagent/internal/modules/availability"
)

const (
	SourceVoiceAgent = "voice-agent"

	DefaultLookaheadDays = 30
	MaxLookaheadDays     = 365
)

type CreateArgs struct {
	CustomerName  string
	CustomerPhone string
	StartTime     time.Time
	PartySize     int
	Notes         string
}

type rawCreateArgs struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	StartTime     string `json:"start_time"`
	PartySize     *int   `json:"party_size"`
	Notes         string `json:"notes"`
}

func ParseCreateArgs(raw json.RawMessage) (CreateArgs, error) {
	var in rawCreateArgs
	if err := json.Unmarshal(raw, &in); err != nil {
		return CreateArgs{}, fmt.Errorf("%w: malformed arguments", ErrValidation)
	}
	if in.CustomerName == "" {
		return CreateArgs{}, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	if in.CustomerPhone == "" {
		return CreateArgs{}, fmt.Errorf("%w: customer_phone is required", ErrValidation)
	}
	start, err := availability.ParseTimestamp(in.StartTime)
	if err != nil {
		return CreateArgs{}, fmt.Errorf("%w: start_time must be a valid timestamp", ErrValidation)
	}
	if in.PartySize == nil || *in.PartySize <= 0 {
		return CreateArgs{}, fmt.Errorf("%w: party_size must be a positive integer", ErrValidation)
	}
	return CreateArgs{
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		StartTime:     start,
		PartySize:     *in.PartySize,
		Notes:         in.Notes,
	}, nil
}

// IdempotencyKeyFor fingerprints a create request. The same call retrying the
// same slot for the same phone always lands on the same key; a corrected
// start time or phone number is a new request.
func IdempotencyKeyFor(callID string, startTime time.Time, customerPhone string) string {
	source := fmt.Sprintf("%s|%s|%s", callID, startTime.UTC().Format(time.RFC3339), customerPhone)
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

type ModifyArgs struct {
	BookingID int64
	StartTime *time.Time
	PartySize *int
	Notes     *string
}

type rawModifyArgs struct {
	BookingID *int64  `json:"booking_id"`
	StartTime *string `json:"start_time"`
	PartySize *int    `json:"party_size"`
	Notes     *string `json:"notes"`
}

func ParseModifyArgs(raw json.RawMessage) (ModifyArgs, error) {
	var in rawModifyArgs
	if err := json.Unmarshal(raw, &in); err != nil {
		return ModifyArgs{}, fmt.Errorf("%w: malformed arguments", ErrValidation)
	}
	if in.BookingID == nil || *in.BookingID <= 0 {
		return ModifyArgs{}, fmt.Errorf("%w: booking_id is required", ErrValidation)
	}
	out := ModifyArgs{BookingID: *in.BookingID, PartySize: in.PartySize, Notes: in.Notes}
	if in.StartTime != nil {
		start, err := availability.ParseTimestamp(*in.StartTime)
		if err != nil {
			return ModifyArgs{}, fmt.Errorf("%w: start_time must be a valid timestamp", ErrValidation)
		}
		out.StartTime = &start
	}
	if in.PartySize != nil && *in.PartySize <= 0 {
		return ModifyArgs{}, fmt.Errorf("%w: party_size must be a positive integer", ErrValidation)
	}
	if out.StartTime == nil && out.PartySize == nil && out.Notes == nil {
		return ModifyArgs{}, fmt.Errorf("%w: at least one change is required", ErrValidation)
	}
	return out, nil
}

type CancelArgs struct {
	BookingID int64
}

func ParseCancelArgs(raw json.RawMessage) (CancelArgs, error) {
	var in struct {
		BookingID *int64 `json:"booking_id"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return CancelArgs{}, fmt.Errorf("%w: malformed arguments", ErrValidation)
	}
	if in.BookingID == nil || *in.BookingID <= 0 {
		return CancelArgs{}, fmt.Errorf("%w: booking_id is required", ErrValidation)
	}
	return CancelArgs{BookingID: *in.BookingID}, nil
}

type FindArgs struct {
	CustomerPhone string
	CustomerName  string
	Date          string
	Time          string
	LookaheadDays int
}

type rawFindArgs struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	LookaheadDays *int   `json:"lookahead_days"`
}

func ParseFindArgs(raw json.RawMessage) (FindArgs, error) {
	var in rawFindArgs
	if err := json.Unmarshal(raw, &in); err != nil {
		return FindArgs{}, fmt.Errorf("%w: malformed arguments", ErrValidation)
	}
	if in.CustomerPhone == "" {
		return FindArgs{}, fmt.Errorf("%w: customer_phone is required", ErrValidation)
	}
	lookahead := DefaultLookaheadDays
	if in.LookaheadDays != nil {
		if *in.LookaheadDays < 1 || *in.LookaheadDays > MaxLookaheadDays {
			return FindArgs{}, fmt.Errorf("%w: lookahead_days must be between 1 and %d", ErrValidation, MaxLookaheadDays)
		}
		lookahead = *in.LookaheadDays
	}
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			return FindArgs{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
		}
	}
	if in.Time != "" {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			return FindArgs{}, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
		}
	}
	return FindArgs{
		CustomerPhone: in.CustomerPhone,
		CustomerName:  in.CustomerName,
		Date:          in.Date,
		Time:          in.Time,
		LookaheadDays: lookahead,
	}, nil
}

// Match is one finder candidate, shaped for the agent to read back.
type Match struct {
	BookingID     int64  `json:"booking_id"`
	StartTime     string `json:"start_time"`
	PartySize     int    `json:"party_size"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}
