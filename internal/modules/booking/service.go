package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"voiceagent/internal/domain"
	"voiceagent/internal/modules/availability"
	"voiceagent/internal/pkg/phone"
	"voiceagent/internal/repository"
)

type Service struct {
	store    *repository.BookingStore
	calendar CalendarSync
}

func NewService(store *repository.BookingStore, calendar CalendarSync) *Service {
	return &Service{store: store, calendar: calendar}
}

type createData struct {
	BookingID     int64  `json:"booking_id"`
	CustomerID    int64  `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	PartySize     int    `json:"party_size"`
	Status        string `json:"status"`
	Source        string `json:"source"`
	Notes         string `json:"notes,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

type createEnvelope struct {
	OK   bool       `json:"ok"`
	Data createData `json:"data"`
}

// Create books a table exactly once per idempotency key. A replayed request
// returns the stored response byte for byte without re-validating or touching
// the store again; two concurrent first attempts race on the key's unique
// constraint and the loser reads the winner's result.
func (s *Service) Create(ctx context.Context, business *domain.Business, callID string, args CreateArgs) (json.RawMessage, error) {
	if callID == "" {
		return nil, fmt.Errorf("%w: call.call_id is required", ErrValidation)
	}
	key := IdempotencyKeyFor(callID, args.StartTime, args.CustomerPhone)

	stored, err := s.store.StoredResponse(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	policy := business.BookingPolicy()
	endTime := args.StartTime.Add(time.Duration(policy.DurationMinutes) * time.Minute)

	var (
		booking  *domain.Booking
		customer *domain.Customer
		payload  json.RawMessage
	)
	txErr := s.store.Transaction(ctx, func(tx *repository.BookingStore) error {
		var err error
		customer, err = findOrCreateCustomer(ctx, tx, business.ID, args.CustomerName, args.CustomerPhone)
		if err != nil {
			return err
		}

		// Recheck capacity inside the transaction: the slot may have filled
		// since the availability search, and a concurrent create for the same
		// window must see this insert or be seen by it.
		existing, err := tx.ListOverlapping(ctx, business.ID, args.StartTime, endTime)
		if err != nil {
			return err
		}
		if !availability.IsSlotAvailable(args.StartTime, args.PartySize, policy.DurationMinutes, policy.MaxGuestsPer15, existing) {
			return ErrNoAvailability
		}

		booking = &domain.Booking{
			BusinessID: business.ID,
			CustomerID: customer.ID,
			StartTime:  args.StartTime,
			EndTime:    endTime,
			PartySize:  args.PartySize,
			Status:     domain.BookingConfirmed,
			Notes:      args.Notes,
			Source:     SourceVoiceAgent,
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}

		payload, err = json.Marshal(createEnvelope{OK: true, Data: createData{
			BookingID:     booking.ID,
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			StartTime:     booking.StartTime.UTC().Format(time.RFC3339),
			EndTime:       booking.EndTime.UTC().Format(time.RFC3339),
			PartySize:     booking.PartySize,
			Status:        string(booking.Status),
			Source:        booking.Source,
			Notes:         booking.Notes,
		}})
		if err != nil {
			return err
		}
		return tx.SaveIdempotencyKey(ctx, key, payload)
	})
	if txErr != nil {
		if repository.IsUniqueViolation(txErr) {
			// A concurrent identical request committed first; its stored
			// response is the one true answer.
			replay, err := s.store.StoredResponse(ctx, key)
			if err == nil && replay != nil {
				return replay, nil
			}
		}
		return nil, txErr
	}

	payload = s.syncCreatedEvent(ctx, business, booking, customer, key, payload)
	return payload, nil
}

// syncCreatedEvent pushes the booking to the external calendar after commit.
// Failures only annotate the stored response; the booking stands either way.
func (s *Service) syncCreatedEvent(
	ctx context.Context,
	business *domain.Business,
	booking *domain.Booking,
	customer *domain.Customer,
	key string,
	payload json.RawMessage,
) json.RawMessage {
	if s.calendar == nil || !business.CalendarSyncEnabled() {
		return payload
	}

	eventID, err := s.calendar.CreateEvent(ctx, business, booking, customer)
	if err == nil && eventID != "" {
		booking.ExternalEventProvider = "google"
		booking.ExternalEventID = eventID
		if err := s.store.UpdateBooking(ctx, booking); err != nil {
			log.Printf("calendar_link_persist_failed booking_id=%d business_id=%d error=%q", booking.ID, business.ID, err)
		}
		return payload
	}
	if err != nil {
		log.Printf("calendar_sync_failed op=create booking_id=%d business_id=%d error=%q", booking.ID, business.ID, err)
	}

	annotated, marshalErr := annotateWarning(payload, "Calendar sync failed")
	if marshalErr != nil {
		return payload
	}
	if err := s.store.UpdateIdempotencyResponse(ctx, key, annotated); err != nil {
		log.Printf("idempotency_annotate_failed key=%s error=%q", key, err)
	}
	return annotated
}

func annotateWarning(payload json.RawMessage, warning string) (json.RawMessage, error) {
	var env createEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	env.Data.Warning = warning
	return json.Marshal(env)
}

func findOrCreateCustomer(ctx context.Context, tx *repository.BookingStore, businessID int64, name, rawPhone string) (*domain.Customer, error) {
	customers, err := tx.ListCustomers(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if phone.Match(customers[i].Phone, rawPhone) {
			c := customers[i]
			if name != "" && c.Name != name {
				c.Name = name
				if err := tx.SaveCustomer(ctx, &c); err != nil {
					return nil, err
				}
			}
			return &c, nil
		}
	}
	c := &domain.Customer{BusinessID: businessID, Name: name, Phone: rawPhone}
	if err := tx.SaveCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ModifyResult carries the updated booking plus a calendar warning, if any.
type ModifyResult struct {
	Booking *domain.Booking
	Warning string
}

// Modify applies a partial update in place. The tenant-scoped fetch makes a
// cross-tenant booking id indistinguishable from a missing one, and a start
// change rechecks capacity with the booking's own allocation excluded.
func (s *Service) Modify(ctx context.Context, business *domain.Business, args ModifyArgs) (*ModifyResult, error) {
	policy := business.BookingPolicy()

	var updated *domain.Booking
	txErr := s.store.Transaction(ctx, func(tx *repository.BookingStore) error {
		b, err := tx.BookingForBusiness(ctx, business.ID, args.BookingID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if b.Status == domain.BookingCancelled {
			return ErrAlreadyCancelled
		}

		newStart := b.StartTime
		if args.StartTime != nil {
			newStart = *args.StartTime
		}
		newParty := b.PartySize
		if args.PartySize != nil {
			newParty = *args.PartySize
		}
		newEnd := newStart.Add(time.Duration(policy.DurationMinutes) * time.Minute)

		if args.StartTime != nil {
			existing, err := tx.ListOverlapping(ctx, business.ID, newStart, newEnd)
			if err != nil {
				return err
			}
			existing = availability.WithoutBooking(existing, b.ID)
			if !availability.IsSlotAvailable(newStart, newParty, policy.DurationMinutes, policy.MaxGuestsPer15, existing) {
				return ErrNoAvailability
			}
		}

		b.StartTime = newStart
		b.EndTime = newEnd
		b.PartySize = newParty
		if args.Notes != nil {
			b.Notes = *args.Notes
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	result := &ModifyResult{Booking: updated}
	if s.calendar != nil && shouldSyncEvent(business, updated) {
		customer, err := s.store.CustomerByID(ctx, business.ID, updated.CustomerID)
		if err == nil {
			err = s.calendar.UpdateEvent(ctx, business, updated, customer)
		}
		if err != nil {
			log.Printf("calendar_sync_failed op=update booking_id=%d business_id=%d error=%q", updated.ID, business.ID, err)
			result.Warning = "Calendar sync failed"
		}
	}
	return result, nil
}

// CancelResult is the terminal state after a cancel.
type CancelResult struct {
	Booking *domain.Booking
	Warning string
}

// Cancel flips the booking to cancelled and never deletes the row.
// Cancelling an already-cancelled booking succeeds and returns the same
// terminal state.
func (s *Service) Cancel(ctx context.Context, business *domain.Business, args CancelArgs) (*CancelResult, error) {
	var (
		updated          *domain.Booking
		alreadyCancelled bool
	)
	txErr := s.store.Transaction(ctx, func(tx *repository.BookingStore) error {
		b, err := tx.BookingForBusiness(ctx, business.ID, args.BookingID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if b.Status == domain.BookingCancelled {
			alreadyCancelled = true
			updated = b
			return nil
		}
		b.Status = domain.BookingCancelled
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	result := &CancelResult{Booking: updated}
	if !alreadyCancelled && s.calendar != nil && shouldSyncEvent(business, updated) {
		if err := s.calendar.DeleteEvent(ctx, business, updated.ExternalEventID); err != nil {
			log.Printf("calendar_sync_failed op=delete booking_id=%d business_id=%d error=%q", updated.ID, business.ID, err)
			result.Warning = "Calendar sync failed"
		}
	}
	return result, nil
}

func shouldSyncEvent(business *domain.Business, b *domain.Booking) bool {
	return business.CalendarSyncEnabled() &&
		b.ExternalEventProvider == "google" &&
		b.ExternalEventID != ""
}
