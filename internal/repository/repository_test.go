package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"travelplanner/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{},
	)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedTrip(t *testing.T, db *gorm.DB) *domain.Trip {
	t.Helper()
	trips := NewTripRepository(db)
	trip := &domain.Trip{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: domain.TripApproved,
		ApprovedItinerary: domain.JSONMap{
			"flight": map[string]any{"carrier": "UA", "price_usd": 1240.50},
		},
	}
	require.NoError(t, trips.Create(context.Background(), trip))
	return trip
}

func TestTripRepository_RoundTrip(t *testing.T) {
	db := testDB(t)
	trips := NewTripRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db)

	got, err := trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, trip.UserID, got.UserID)
	assert.Equal(t, domain.TripApproved, got.Status)
	assert.Equal(t, "UA", got.ApprovedItinerary.SubMap("flight").String("carrier"))

	require.NoError(t, trips.UpdateStatus(ctx, trip.ID, domain.TripBooking))
	got, err = trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripBooking, got.Status)
}

func TestTripRepository_NotFound(t *testing.T) {
	db := testDB(t)
	trips := NewTripRepository(db)

	_, err := trips.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepository_OneBookingPerComponent(t *testing.T) {
	db := testDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	trip := seedTrip(t, db)

	first := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingFlight,
		Status:       domain.BookingPending,
		ComponentKey: "flight",
		Details:      domain.JSONMap{"flight": map[string]any{"carrier": "UA"}},
	}
	require.NoError(t, bookings.Create(ctx, first))

	dup := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingFlight,
		Status:       domain.BookingPending,
		ComponentKey: "flight",
	}
	assert.Error(t, bookings.Create(ctx, dup))

	other := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingHotel,
		Status:       domain.BookingPending,
		ComponentKey: "hotel",
	}
	assert.NoError(t, bookings.Create(ctx, other))
}

func TestBookingRepository_StatusTransitions(t *testing.T) {
	db := testDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	trip := seedTrip(t, db)

	b := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingFlight,
		Status:       domain.BookingPending,
		ComponentKey: "flight",
		Details:      domain.JSONMap{"flight": map[string]any{"carrier": "UA"}},
	}
	require.NoError(t, bookings.Create(ctx, b))

	require.NoError(t, bookings.UpdateStatus(ctx, b.ID, domain.BookingInProgress))
	require.NoError(t, bookings.SetVirtualCardID(ctx, b.ID, "ic_1"))
	require.NoError(t, bookings.MarkConfirmed(ctx, b.ID, "ABC123"))

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, "ABC123", got.ConfirmationNumber)
	assert.Equal(t, "ic_1", got.VirtualCardID)
}

func TestBookingRepository_MarkFailedPreservesDetails(t *testing.T) {
	db := testDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	trip := seedTrip(t, db)

	b := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingFlight,
		Status:       domain.BookingInProgress,
		ComponentKey: "flight",
		Details:      domain.JSONMap{"flight": map[string]any{"carrier": "UA", "price_usd": 1240.50}},
	}
	require.NoError(t, bookings.Create(ctx, b))

	require.NoError(t, bookings.MarkFailed(ctx, b.ID, domain.BookingFailed, "payment declined"))

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingFailed, got.Status)
	assert.Equal(t, "payment declined", got.Details.String("error"))
	assert.Equal(t, "UA", got.Details.SubMap("flight").String("carrier"))
}

func TestBookingRepository_GetPendingByTripOrdered(t *testing.T) {
	db := testDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	trip := seedTrip(t, db)

	for _, key := range []string{"flight", "hotel", "activities"} {
		b := &domain.Booking{
			TripID:       trip.ID,
			Type:         domain.BookingFlight,
			Status:       domain.BookingPending,
			ComponentKey: key,
		}
		require.NoError(t, bookings.Create(ctx, b))
	}
	done := &domain.Booking{
		TripID:       trip.ID,
		Type:         domain.BookingHotel,
		Status:       domain.BookingConfirmed,
		ComponentKey: "extra",
	}
	require.NoError(t, bookings.Create(ctx, done))

	pending, err := bookings.GetPendingByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
	for _, p := range pending {
		assert.Equal(t, domain.BookingPending, p.Status)
	}
}

func TestAgentLogRepository_AppendAndList(t *testing.T) {
	db := testDB(t)
	logs := NewAgentLogRepository(db)
	ctx := context.Background()
	bookingID := uuid.New()

	shot := "cG5n"
	rows := []*domain.AgentLog{
		{BookingID: bookingID, Step: "navigate", Action: "open site", Result: domain.StepInProgress},
		{BookingID: bookingID, Step: "step_1", Action: "[click] search", Result: domain.StepInProgress},
		{BookingID: bookingID, Step: "done", Action: "confirmed", Result: domain.StepSuccess, ScreenshotB64: &shot},
	}
	for _, row := range rows {
		require.NoError(t, logs.Append(ctx, row))
	}

	all, err := logs.ListByBooking(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "navigate", all[0].Step)
	assert.Equal(t, "done", all[2].Step)
	assert.NotNil(t, all[2].ScreenshotB64)

	after, err := logs.ListByBookingAfter(ctx, bookingID, all[0].ID)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	enc := "ciphertext"
	u := &domain.User{
		ID:        uuid.New(),
		Email:     "dana@example.com",
		FirstName: "Dana",
		LoyaltyNumbers: domain.JSONList{
			map[string]any{"program": "united_mileageplus", "number": "UA123456"},
		},
		PassportNumberEnc: &enc,
	}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.PassportNumberEnc)
	assert.Equal(t, "ciphertext", *got.PassportNumberEnc)
	require.Len(t, got.LoyaltyNumbers, 1)

	got.Phone = "+14155550123"
	require.NoError(t, users.Update(ctx, got))
	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "+14155550123", again.Phone)
}
