package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceagent/internal/database"
	"voiceagent/internal/domain"
	"voiceagent/internal/repository"
)

func newTestStore(t *testing.T) (*repository.BookingStore, *repository.BusinessRepository) {
	t.Helper()
	db, err := database.ConnectForTest()
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewBookingStore(db), repository.NewBusinessRepository(db)
}

func seedBusiness(t *testing.T, businesses *repository.BusinessRepository, externalID string, maxGuests int) *domain.Business {
	t.Helper()
	policies, err := json.Marshal(map[string]any{
		"default_booking_duration_minutes": 90,
		"max_total_guests_per_15min":       maxGuests,
	})
	require.NoError(t, err)
	b := &domain.Business{
		ExternalID: externalID,
		Name:       "Trattoria " + externalID,
		Timezone:   "UTC",
		Policies:   policies,
	}
	require.NoError(t, businesses.Create(context.Background(), b))
	return b
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.UTC()
}

func countBookings(t *testing.T, store *repository.BookingStore, businessID int64) int {
	t.Helper()
	all, err := store.ListConfirmedBetween(context.Background(),
		businessID, ts(t, "2000-01-01T00:00:00Z"), ts(t, "2100-01-01T00:00:00Z"))
	require.NoError(t, err)
	return len(all)
}

func TestCreateBookingPersists(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	payload, err := svc.Create(context.Background(), business, "call-1", CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+1 555 010 0001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
		Notes:         "window seat",
	})
	require.NoError(t, err)

	var env createEnvelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.True(t, env.OK)
	assert.NotZero(t, env.Data.BookingID)
	assert.Equal(t, "Alex Morgan", env.Data.CustomerName)
	assert.Equal(t, "2026-09-01T18:00:00Z", env.Data.StartTime)
	assert.Equal(t, "2026-09-01T19:30:00Z", env.Data.EndTime)
	assert.Equal(t, "confirmed", env.Data.Status)
	assert.Equal(t, SourceVoiceAgent, env.Data.Source)
	assert.Equal(t, "window seat", env.Data.Notes)
	assert.Equal(t, 1, countBookings(t, store, business.ID))
}

func TestCreateBookingReplaysStoredResponse(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	args := CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
	}

	first, err := svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, countBookings(t, store, business.ID))
}

func TestCreateBookingDifferentSlotIsNewRequest(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	args := CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
	}
	_, err := svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)

	args.StartTime = ts(t, "2026-09-01T20:00:00Z")
	_, err = svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)

	assert.Equal(t, 2, countBookings(t, store, business.ID))
}

func TestCreateBookingRejectsFullSlot(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 10)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), business, "call-1", CreateArgs{
		CustomerName:  "Big Group",
		CustomerPhone: "+15550100009",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     9,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), business, "call-2", CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     ts(t, "2026-09-01T18:30:00Z"),
		PartySize:     2,
	})
	assert.ErrorIs(t, err, ErrNoAvailability)
	assert.Equal(t, 1, countBookings(t, store, business.ID))
}

func TestCreateBookingRequiresCallID(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), business, "", CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBookingReusesCustomerByPhone(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), business, "call-1", CreateArgs{
		CustomerName:  "Alex",
		CustomerPhone: "+1 (555) 010-0001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
	})
	require.NoError(t, err)

	// Same phone in a different format, fuller name: one customer, updated.
	_, err = svc.Create(context.Background(), business, "call-2", CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "15550100001",
		StartTime:     ts(t, "2026-09-02T18:00:00Z"),
		PartySize:     4,
	})
	require.NoError(t, err)

	customers, err := store.ListCustomers(context.Background(), business.ID)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Alex Morgan", customers[0].Name)
}

func createConfirmed(t *testing.T, svc *Service, business *domain.Business, callID string, start time.Time, party int) int64 {
	t.Helper()
	payload, err := svc.Create(context.Background(), business, callID, CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     start,
		PartySize:     party,
	})
	require.NoError(t, err)
	var env createEnvelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return env.Data.BookingID
}

func TestModifyBookingUpdatesInPlace(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	newStart := ts(t, "2026-09-01T19:00:00Z")
	newParty := 4
	result, err := svc.Modify(context.Background(), business, ModifyArgs{
		BookingID: id,
		StartTime: &newStart,
		PartySize: &newParty,
	})
	require.NoError(t, err)

	assert.Equal(t, id, result.Booking.ID)
	assert.True(t, result.Booking.StartTime.Equal(newStart))
	assert.True(t, result.Booking.EndTime.Equal(newStart.Add(90*time.Minute)))
	assert.Equal(t, 4, result.Booking.PartySize)
	assert.Equal(t, 1, countBookings(t, store, business.ID))
}

func TestModifyBookingRejectedLeavesBookingUnchanged(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 10)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T12:00:00Z"), 2)
	createConfirmed(t, svc, business, "call-2", ts(t, "2026-09-01T18:00:00Z"), 9)

	newStart := ts(t, "2026-09-01T18:00:00Z")
	_, err := svc.Modify(context.Background(), business, ModifyArgs{BookingID: id, StartTime: &newStart})
	assert.ErrorIs(t, err, ErrNoAvailability)

	unchanged, err := store.BookingForBusiness(context.Background(), business.ID, id)
	require.NoError(t, err)
	assert.True(t, unchanged.StartTime.Equal(ts(t, "2026-09-01T12:00:00Z")))
	assert.Equal(t, 2, unchanged.PartySize)
}

func TestModifyBookingExcludesOwnAllocation(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 10)
	svc := NewService(store, nil)

	// The booking fills the room alone; nudging it by 15 minutes must not
	// collide with itself.
	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 10)

	newStart := ts(t, "2026-09-01T18:15:00Z")
	result, err := svc.Modify(context.Background(), business, ModifyArgs{BookingID: id, StartTime: &newStart})
	require.NoError(t, err)
	assert.True(t, result.Booking.StartTime.Equal(newStart))
}

func TestModifyBookingOtherTenantNotFound(t *testing.T) {
	store, businesses := newTestStore(t)
	owner := seedBusiness(t, businesses, "trattoria", 40)
	intruder := seedBusiness(t, businesses, "brasserie", 40)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, owner, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	party := 4
	_, err := svc.Modify(context.Background(), intruder, ModifyArgs{BookingID: id, PartySize: &party})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModifyCancelledBooking(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)
	_, err := svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)

	party := 4
	_, err = svc.Modify(context.Background(), business, ModifyArgs{BookingID: id, PartySize: &party})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelBookingIsIdempotent(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	first, err := svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, first.Booking.Status)

	second, err := svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, second.Booking.Status)
}

func TestCancelReleasesCapacity(t *testing.T) {
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 10)
	svc := NewService(store, nil)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 10)
	_, err := svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)

	createConfirmed(t, svc, business, "call-2", ts(t, "2026-09-01T18:00:00Z"), 10)
}

/* -------- calendar sync -------- */

type stubCalendar struct {
	eventID   string
	createErr error
	updateErr error
	deleteErr error
	deleted   []string
}

func (s *stubCalendar) CreateEvent(_ context.Context, _ *domain.Business, _ *domain.Booking, _ *domain.Customer) (string, error) {
	return s.eventID, s.createErr
}

func (s *stubCalendar) UpdateEvent(_ context.Context, _ *domain.Business, _ *domain.Booking, _ *domain.Customer) error {
	return s.updateErr
}

func (s *stubCalendar) DeleteEvent(_ context.Context, _ *domain.Business, externalEventID string) error {
	s.deleted = append(s.deleted, externalEventID)
	return s.deleteErr
}

func connectedBusiness(t *testing.T, businesses *repository.BusinessRepository) *domain.Business {
	t.Helper()
	b := seedBusiness(t, businesses, "synced", 40)
	b.CalendarProvider = "google"
	b.CalendarAuthStatus = domain.CalendarConnected
	require.NoError(t, businesses.Update(context.Background(), b))
	return b
}

func TestCreateBookingLinksCalendarEvent(t *testing.T) {
	store, businesses := newTestStore(t)
	business := connectedBusiness(t, businesses)
	svc := NewService(store, &stubCalendar{eventID: "evt-1"})

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	b, err := store.BookingForBusiness(context.Background(), business.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", b.ExternalEventID)
	assert.Equal(t, "google", b.ExternalEventProvider)
}

func TestCreateBookingCalendarFailureAnnotatesResponse(t *testing.T) {
	store, businesses := newTestStore(t)
	business := connectedBusiness(t, businesses)
	svc := NewService(store, &stubCalendar{createErr: errors.New("api down")})

	args := CreateArgs{
		CustomerName:  "Alex Morgan",
		CustomerPhone: "+15550100001",
		StartTime:     ts(t, "2026-09-01T18:00:00Z"),
		PartySize:     2,
	}
	payload, err := svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)

	var env createEnvelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.True(t, env.OK)
	assert.Equal(t, "Calendar sync failed", env.Data.Warning)

	// Replays return the annotated response too.
	replay, err := svc.Create(context.Background(), business, "call-1", args)
	require.NoError(t, err)
	assert.Equal(t, string(payload), string(replay))
	assert.Equal(t, 1, countBookings(t, store, business.ID))
}

func TestCancelDeletesCalendarEvent(t *testing.T) {
	store, businesses := newTestStore(t)
	business := connectedBusiness(t, businesses)
	cal := &stubCalendar{eventID: "evt-9"}
	svc := NewService(store, cal)

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	result, err := svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Equal(t, []string{"evt-9"}, cal.deleted)

	// The second cancel is a no-op and must not delete again.
	_, err = svc.Cancel(context.Background(), business, CancelArgs{BookingID: id})
	require.NoError(t, err)
	assert.Len(t, cal.deleted, 1)
}

func TestModifyCalendarFailureWarns(t *testing.T) {
	store, businesses := newTestStore(t)
	business := connectedBusiness(t, businesses)
	svc := NewService(store, &stubCalendar{eventID: "evt-2", updateErr: errors.New("api down")})

	id := createConfirmed(t, svc, business, "call-1", ts(t, "2026-09-01T18:00:00Z"), 2)

	party := 4
	result, err := svc.Modify(context.Background(), business, ModifyArgs{BookingID: id, PartySize: &party})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Booking.PartySize)
	assert.Equal(t, "Calendar sync failed", result.Warning)
}
