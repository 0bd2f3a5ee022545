package trip

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
	"travelplanner/internal/repository"
)

type mockTripRepo struct{ mock.Mock }

func (m *mockTripRepo) Create(ctx context.Context, t *domain.Trip) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *mockTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockAgentLogRepo struct{ mock.Mock }

func (m *mockAgentLogRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.AgentLog, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentLog), args.Error(1)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueTripBookings(ctx context.Context, tripID uuid.UUID) error {
	args := m.Called(ctx, tripID)
	return args.Error(0)
}

func approvedTrip(userID uuid.UUID) *domain.Trip {
	return &domain.Trip{
		ID:     uuid.New(),
		UserID: userID,
		Status: domain.TripApproved,
		ApprovedItinerary: domain.JSONMap{
			"flight": map[string]any{"carrier": "UA", "price_usd": 1240.50},
			"hotel":  map[string]any{"name": "Courtyard Tokyo Ginza", "price_total_usd": 980.0},
			"activities": []any{
				map[string]any{"name": "Tsukiji food tour", "price_usd": 95.0},
			},
			"activities_total_usd": 95.0,
		},
	}
}

func newTripFixture() (*mockTripRepo, *mockBookingRepo, *mockAgentLogRepo, *mockEnqueuer, *Service) {
	trips := &mockTripRepo{}
	bookings := &mockBookingRepo{}
	logs := &mockAgentLogRepo{}
	tasks := &mockEnqueuer{}
	return trips, bookings, logs, tasks, NewService(trips, bookings, logs, tasks)
}

func TestInitiateBooking_CreatesAllComponents(t *testing.T) {
	trips, bookings, _, tasks, svc := newTripFixture()
	userID := uuid.New()
	trip := approvedTrip(userID)

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	trips.On("UpdateStatus", mock.Anything, trip.ID, domain.TripBooking).Return(nil)
	tasks.On("EnqueueTripBookings", mock.Anything, trip.ID).Return(nil)
	bookings.On("GetByTrip", mock.Anything, trip.ID).Return([]domain.Booking{}, nil)

	resp, err := svc.InitiateBooking(context.Background(), trip.ID, userID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.TripBooking), resp.Status)
	bookings.AssertNumberOfCalls(t, "Create", 3)

	keys := map[string]domain.BookingType{}
	for _, call := range bookings.Calls {
		if call.Method != "Create" {
			continue
		}
		b := call.Arguments.Get(1).(*domain.Booking)
		keys[b.ComponentKey] = b.Type
		assert.Equal(t, domain.BookingPending, b.Status)
		assert.Equal(t, trip.ID, b.TripID)
	}
	assert.Equal(t, domain.BookingFlight, keys["flight"])
	assert.Equal(t, domain.BookingHotel, keys["hotel"])
	assert.Equal(t, domain.BookingActivity, keys["activities"])
}

func TestInitiateBooking_DuplicateComponentsAreSkipped(t *testing.T) {
	trips, bookings, _, tasks, svc := newTripFixture()
	userID := uuid.New()
	trip := approvedTrip(userID)

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	trips.On("UpdateStatus", mock.Anything, trip.ID, domain.TripBooking).Return(nil)
	tasks.On("EnqueueTripBookings", mock.Anything, trip.ID).Return(nil)
	bookings.On("GetByTrip", mock.Anything, trip.ID).Return([]domain.Booking{}, nil)

	_, err := svc.InitiateBooking(context.Background(), trip.ID, userID)

	require.NoError(t, err)
	tasks.AssertCalled(t, "EnqueueTripBookings", mock.Anything, trip.ID)
}

func TestInitiateBooking_WrongOwner(t *testing.T) {
	trips, _, _, _, svc := newTripFixture()
	trip := approvedTrip(uuid.New())

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)

	_, err := svc.InitiateBooking(context.Background(), trip.ID, uuid.New())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInitiateBooking_NotApproved(t *testing.T) {
	trips, _, _, _, svc := newTripFixture()
	userID := uuid.New()
	trip := approvedTrip(userID)
	trip.Status = domain.TripOptionsReady

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)

	_, err := svc.InitiateBooking(context.Background(), trip.ID, userID)

	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestInitiateBooking_RetryAfterBookingFailedAllowed(t *testing.T) {
	trips, bookings, _, tasks, svc := newTripFixture()
	userID := uuid.New()
	trip := approvedTrip(userID)
	trip.Status = domain.TripBookingFailed

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	trips.On("UpdateStatus", mock.Anything, trip.ID, domain.TripBooking).Return(nil)
	tasks.On("EnqueueTripBookings", mock.Anything, trip.ID).Return(nil)
	bookings.On("GetByTrip", mock.Anything, trip.ID).Return([]domain.Booking{}, nil)

	_, err := svc.InitiateBooking(context.Background(), trip.ID, userID)

	assert.NoError(t, err)
}

func TestInitiateBooking_NotFound(t *testing.T) {
	trips, _, _, _, svc := newTripFixture()
	tripID := uuid.New()

	trips.On("GetByID", mock.Anything, tripID).Return(nil, repository.ErrNotFound)

	_, err := svc.InitiateBooking(context.Background(), tripID, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitiateBooking_NoComponents(t *testing.T) {
	trips, _, _, _, svc := newTripFixture()
	userID := uuid.New()
	trip := approvedTrip(userID)
	trip.ApprovedItinerary = domain.JSONMap{}

	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)

	_, err := svc.InitiateBooking(context.Background(), trip.ID, userID)

	assert.ErrorIs(t, err, ErrNoComponents)
}

func TestItineraryComponents_FlightOnly(t *testing.T) {
	components := itineraryComponents(domain.JSONMap{
		"flight": map[string]any{"carrier": "DL"},
	})

	require.Len(t, components, 1)
	assert.Equal(t, "flight", components[0].key)
	assert.Equal(t, domain.BookingFlight, components[0].typ)
}

func TestItineraryComponents_ActivityDetailsCarryTotal(t *testing.T) {
	components := itineraryComponents(domain.JSONMap{
		"activities":           []any{map[string]any{"name": "tour"}},
		"activities_total_usd": 135.0,
	})

	require.Len(t, components, 1)
	assert.Equal(t, 135.0, components[0].details.Float("activities_total_usd"))
}

func TestGetBookingLog_OwnershipEnforced(t *testing.T) {
	trips, bookings, _, _, svc := newTripFixture()
	owner := uuid.New()
	trip := approvedTrip(owner)
	b := &domain.Booking{ID: uuid.New(), TripID: trip.ID}

	bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)

	_, err := svc.GetBookingLog(context.Background(), b.ID, uuid.New())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetBookingLog_ElidesScreenshots(t *testing.T) {
	trips, bookings, logs, _, svc := newTripFixture()
	owner := uuid.New()
	trip := approvedTrip(owner)
	b := &domain.Booking{ID: uuid.New(), TripID: trip.ID}
	shot := "aGVsbG8="
	errMsg := "sold out"

	bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	trips.On("GetByID", mock.Anything, trip.ID).Return(trip, nil)
	logs.On("ListByBooking", mock.Anything, b.ID).Return([]domain.AgentLog{
		{ID: 1, Step: "navigate", Action: "open site", Result: domain.StepInProgress, CreatedAt: time.Now()},
		{ID: 2, Step: "step_4", Action: "error", Result: domain.StepError, ScreenshotB64: &shot, ErrorMessage: &errMsg, CreatedAt: time.Now()},
	}, nil)

	entries, err := svc.GetBookingLog(context.Background(), b.ID, owner)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].HasScreen)
	assert.True(t, entries[1].HasScreen)
	assert.Equal(t, "sold out", entries[1].ErrorMessage)
}

func TestCreateTrip_Internal(t *testing.T) {
	trips, _, _, _, svc := newTripFixture()
	userID := uuid.New()

	trips.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.CreateTrip(context.Background(), CreateTripRequest{
		UserID:            userID.String(),
		RawRequest:        "weekend in Chicago",
		ApprovedItinerary: domain.JSONMap{"hotel": map[string]any{"name": "Palmer House"}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TripApproved, created.Status)
	assert.Equal(t, userID, created.UserID)
}

func TestCreateTrip_RejectsEmptyItinerary(t *testing.T) {
	_, _, _, _, svc := newTripFixture()

	_, err := svc.CreateTrip(context.Background(), CreateTripRequest{
		UserID:            uuid.New().String(),
		ApprovedItinerary: domain.JSONMap{},
	})

	assert.ErrorIs(t, err, ErrNoComponents)
}
