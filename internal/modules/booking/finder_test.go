package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceagent/internal/repository"
)

// The finder tests pin "now" just before the seeded bookings so the default
// lookahead window covers all of them.
func finderNow(t *testing.T) time.Time {
	return ts(t, "2026-09-01T10:00:00Z")
}

func seedFinderData(t *testing.T) (*Service, *repository.BusinessRepository, int64) {
	t.Helper()
	store, businesses := newTestStore(t)
	business := seedBusiness(t, businesses, "trattoria", 40)
	svc := NewService(store, nil)

	book := func(callID, name, phone, start string, party int) {
		t.Helper()
		_, err := svc.Create(context.Background(), business, callID, CreateArgs{
			CustomerName:  name,
			CustomerPhone: phone,
			StartTime:     ts(t, start),
			PartySize:     party,
		})
		require.NoError(t, err)
	}

	book("call-1", "Alex Morgan", "+15550100001", "2026-09-01T18:00:00Z", 2)
	book("call-2", "Alex Morgan", "+15550100001", "2026-09-03T19:30:00Z", 4)
	book("call-3", "Sam Fisher", "+15550100002", "2026-09-01T18:00:00Z", 3)

	return svc, businesses, business.ID
}

func TestFindByPhoneOnly(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	matches, err := svc.Find(context.Background(), business,
		FindArgs{CustomerPhone: "1 555 010 0001", LookaheadDays: DefaultLookaheadDays}, finderNow(t))
	require.NoError(t, err)

	require.Len(t, matches, 2)
	// Soonest first.
	assert.Equal(t, "2026-09-01T18:00:00Z", matches[0].StartTime)
	assert.Equal(t, "2026-09-03T19:30:00Z", matches[1].StartTime)
}

func TestFindNarrowedByDate(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	matches, err := svc.Find(context.Background(), business, FindArgs{
		CustomerPhone: "+15550100001",
		Date:          "2026-09-03",
		LookaheadDays: DefaultLookaheadDays,
	}, finderNow(t))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].PartySize)
}

func TestFindNarrowedByTime(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	// 19:00 is within two hours of both 18:00 and 19:30 starts; 16:00 is not
	// close to 19:30.
	matches, err := svc.Find(context.Background(), business, FindArgs{
		CustomerPhone: "+15550100001",
		Time:          "16:30",
		LookaheadDays: DefaultLookaheadDays,
	}, finderNow(t))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "2026-09-01T18:00:00Z", matches[0].StartTime)
}

func TestFindNarrowedByName(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	matches, err := svc.Find(context.Background(), business, FindArgs{
		CustomerPhone: "+15550100002",
		CustomerName:  "sam",
		LookaheadDays: DefaultLookaheadDays,
	}, finderNow(t))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Sam Fisher", matches[0].CustomerName)

	matches, err = svc.Find(context.Background(), business, FindArgs{
		CustomerPhone: "+15550100002",
		CustomerName:  "Morgan",
		LookaheadDays: DefaultLookaheadDays,
	}, finderNow(t))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindUnknownPhone(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	matches, err := svc.Find(context.Background(), business,
		FindArgs{CustomerPhone: "+19990000000", LookaheadDays: DefaultLookaheadDays}, finderNow(t))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindExcludesCancelledAndPast(t *testing.T) {
	svc, businesses, businessID := seedFinderData(t)
	business, err := businesses.GetByID(context.Background(), businessID)
	require.NoError(t, err)

	// Cancel the near booking; only the later one should remain.
	matches, err := svc.Find(context.Background(), business,
		FindArgs{CustomerPhone: "+15550100001", LookaheadDays: DefaultLookaheadDays}, finderNow(t))
	require.NoError(t, err)
	require.Len(t, matches, 2)

	_, err = svc.Cancel(context.Background(), business, CancelArgs{BookingID: matches[0].BookingID})
	require.NoError(t, err)

	matches, err = svc.Find(context.Background(), business,
		FindArgs{CustomerPhone: "+15550100001", LookaheadDays: DefaultLookaheadDays}, finderNow(t))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2026-09-03T19:30:00Z", matches[0].StartTime)

	// A "now" past every booking finds nothing.
	matches, err = svc.Find(context.Background(), business,
		FindArgs{CustomerPhone: "+15550100001", LookaheadDays: DefaultLookaheadDays}, ts(t, "2026-10-01T10:00:00Z"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindScopedToTenant(t *testing.T) {
	svc, businesses, _ := seedFinderData(t)
	other := seedBusiness(t, businesses, "brasserie", 40)

	matches, err := svc.Find(context.Background(), other,
		FindArgs{CustomerPhone: "+15550100001", LookaheadDays: DefaultLookaheadDays}, finderNow(t))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
