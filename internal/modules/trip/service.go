package trip

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"travelplanner/internal/domain"
	"travelplanner/internal/repository"
)

type Service struct {
	trips    TripRepository
	bookings BookingRepository
	logs     AgentLogRepository
	tasks    TaskEnqueuer
}

func NewService(trips TripRepository, bookings BookingRepository, logs AgentLogRepository, tasks TaskEnqueuer) *Service {
	return &Service{trips: trips, bookings: bookings, logs: logs, tasks: tasks}
}

// component is one bookable slice of an approved itinerary.
type component struct {
	key     string
	typ     domain.BookingType
	details domain.JSONMap
}

// InitiateBooking creates pending bookings for every component of the
// approved itinerary and enqueues the booking run. Re-initiation is safe:
// the one-booking-per-component index turns duplicate creates into no-ops.
func (s *Service) InitiateBooking(ctx context.Context, tripID, userID uuid.UUID) (*InitiateBookingResponse, error) {
	t, err := s.getOwned(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TripApproved && t.Status != domain.TripBookingFailed {
		return nil, fmt.Errorf("%w: status %s", ErrNotApproved, t.Status)
	}

	components := itineraryComponents(t.ApprovedItinerary)
	if len(components) == 0 {
		return nil, ErrNoComponents
	}

	for _, comp := range components {
		b := &domain.Booking{
			ID:           uuid.New(),
			TripID:       tripID,
			Type:         comp.typ,
			Status:       domain.BookingPending,
			Details:      comp.details,
			ComponentKey: comp.key,
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			if isUniqueViolation(err) {
				log.Printf("booking_already_exists trip_id=%s component=%s", tripID, comp.key)
				continue
			}
			return nil, fmt.Errorf("create booking %s: %w", comp.key, err)
		}
	}

	if err := s.trips.UpdateStatus(ctx, tripID, domain.TripBooking); err != nil {
		return nil, fmt.Errorf("set trip booking: %w", err)
	}
	if err := s.tasks.EnqueueTripBookings(ctx, tripID); err != nil {
		return nil, fmt.Errorf("enqueue booking run: %w", err)
	}
	log.Printf("booking_initiated trip_id=%s user_id=%s components=%d", tripID, userID, len(components))

	all, err := s.bookings.GetByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return &InitiateBookingResponse{
		TripID:   tripID.String(),
		Status:   string(domain.TripBooking),
		Bookings: all,
	}, nil
}

// CreateTrip ingests an approved trip from the upstream planner. Internal
// surface only.
func (s *Service) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	if len(itineraryComponents(req.ApprovedItinerary)) == 0 {
		return nil, ErrNoComponents
	}
	t := &domain.Trip{
		ID:                uuid.New(),
		UserID:            userID,
		Status:            domain.TripApproved,
		RawRequest:        req.RawRequest,
		ParsedSpec:        req.ParsedSpec,
		ApprovedItinerary: req.ApprovedItinerary,
	}
	if err := s.trips.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	log.Printf("trip_ingested trip_id=%s user_id=%s", t.ID, userID)
	return t, nil
}

func (s *Service) GetTrip(ctx context.Context, tripID, userID uuid.UUID) (*domain.Trip, error) {
	return s.getOwned(ctx, tripID, userID)
}

func (s *Service) ListBookings(ctx context.Context, tripID, userID uuid.UUID) ([]domain.Booking, error) {
	if _, err := s.getOwned(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.bookings.GetByTrip(ctx, tripID)
}

// GetBookingLog returns the agent audit trail for one booking, screenshots
// elided down to a presence flag.
func (s *Service) GetBookingLog(ctx context.Context, bookingID, userID uuid.UUID) ([]BookingLogEntry, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.getOwned(ctx, b.TripID, userID); err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	entries := make([]BookingLogEntry, 0, len(logs))
	for _, l := range logs {
		e := BookingLogEntry{
			ID:        l.ID,
			Step:      l.Step,
			Action:    l.Action,
			Result:    string(l.Result),
			HasScreen: l.ScreenshotB64 != nil,
			CreatedAt: l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if l.ErrorMessage != nil {
			e.ErrorMessage = *l.ErrorMessage
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) getOwned(ctx context.Context, tripID, userID uuid.UUID) (*domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

func itineraryComponents(itinerary domain.JSONMap) []component {
	var out []component
	if flight := itinerary.SubMap("flight"); len(flight) > 0 {
		out = append(out, component{
			key: "flight", typ: domain.BookingFlight,
			details: domain.JSONMap{"flight": map[string]any(flight)},
		})
	}
	if hotel := itinerary.SubMap("hotel"); len(hotel) > 0 {
		out = append(out, component{
			key: "hotel", typ: domain.BookingHotel,
			details: domain.JSONMap{"hotel": map[string]any(hotel)},
		})
	}
	if acts := itinerary.List("activities"); len(acts) > 0 {
		out = append(out, component{
			key: "activities", typ: domain.BookingActivity,
			details: domain.JSONMap{
				"activities":           acts,
				"activities_total_usd": itinerary.Float("activities_total_usd"),
			},
		})
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
