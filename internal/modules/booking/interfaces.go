package booking

import (
	"context"

	"github.com/google/uuid"

	"travelplanner/internal/domain"
)

type TripRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error
}

type BookingRepository interface {
	GetPendingByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error)
	GetByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	SetVirtualCardID(ctx context.Context, id uuid.UUID, cardID string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, confirmationNumber string) error
	MarkFailed(ctx context.Context, id uuid.UUID, status domain.BookingStatus, errMsg string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AgentRunner attempts one booking component. CheckSupport must be free of
// side effects so it can gate card issuance.
type AgentRunner interface {
	CheckSupport(bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext) error
	Run(ctx context.Context, bookingID uuid.UUID, bookingType domain.BookingType, itinerary domain.JSONMap, traveler domain.TravelerContext, card *domain.VirtualCard) (string, error)
}

// CardIssuer manages single-use virtual cards scoped to one booking attempt.
type CardIssuer interface {
	Create(ctx context.Context, amountUSD float64, description, cardholderEmail string) (*domain.VirtualCard, error)
	Void(ctx context.Context, cardID string) error
}

// Notifier delivers the post-run confirmation summary. Failures are logged,
// never propagated.
type Notifier interface {
	SendConfirmation(ctx context.Context, toEmail, toName string, summary *Summary) error
}

// Decrypter exposes the profile-field decryption used to build the traveler
// context.
type Decrypter interface {
	Decrypt(value *string) (string, error)
}
