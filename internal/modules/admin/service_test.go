package admin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceagent/internal/database"
	"voiceagent/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.ConnectForTest()
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return NewService(repository.NewBusinessRepository(db))
}

func TestCreateBusiness(t *testing.T) {
	svc := newTestService(t)

	b, err := svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		ExternalID: "trattoria",
		Name:       "Trattoria Nonna",
		Timezone:   "Europe/Rome",
		Phone:      "+15550100002",
		Policies:   json.RawMessage(`{"max_total_guests_per_15min":30}`),
	})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, "Europe/Rome", b.Timezone)
	assert.Equal(t, 30, b.BookingPolicy().MaxGuestsPer15)
}

func TestCreateBusinessValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateBusiness(context.Background(), &CreateBusinessRequest{Timezone: "UTC"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		Name:     "No Such Zone",
		Timezone: "Mars/Olympus",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		Name:     "Broken Policies",
		Policies: json.RawMessage(`{not json`),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBusinessDuplicateExternalID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		ExternalID: "trattoria", Name: "First",
	})
	require.NoError(t, err)

	_, err = svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		ExternalID: "trattoria", Name: "Second",
	})
	assert.ErrorIs(t, err, ErrDuplicateExternalID)
}

func TestUpdateBusinessPartial(t *testing.T) {
	svc := newTestService(t)

	b, err := svc.CreateBusiness(context.Background(), &CreateBusinessRequest{
		ExternalID: "trattoria",
		Name:       "Trattoria Nonna",
		Phone:      "+15550100002",
	})
	require.NoError(t, err)

	newPhone := "+15550100099"
	updated, err := svc.UpdateBusiness(context.Background(), b.ID, &UpdateBusinessRequest{
		Phone:    &newPhone,
		Policies: json.RawMessage(`{"agent_id":"agent-007"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "Trattoria Nonna", updated.Name)
	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, "agent-007", updated.BookingPolicy().AgentID)
}

func TestUpdateBusinessNotFound(t *testing.T) {
	svc := newTestService(t)

	name := "Ghost Kitchen"
	_, err := svc.UpdateBusiness(context.Background(), 404, &UpdateBusinessRequest{Name: &name})
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	_, err = svc.GetBusiness(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestListBusinesses(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateBusiness(context.Background(), &CreateBusinessRequest{ExternalID: "a", Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateBusiness(context.Background(), &CreateBusinessRequest{ExternalID: "b", Name: "B"})
	require.NoError(t, err)

	all, err := svc.ListBusinesses(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
