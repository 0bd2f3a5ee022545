package trip

import (
	"context"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
)

type TripRepository interface {
	Create(ctx context.Context, t *domain.Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error)
}

type AgentLogRepository interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.AgentLog, error)
}

// TaskEnqueuer hands the booking run off to the worker tier.
type TaskEnqueuer interface {
	EnqueueTripBookings(ctx context.Context, tripID uuid.UUID) error
}
